package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/docstore"
	"github.com/dmitrijs2005/tripkeeper/internal/identity"
)

// HTTPClient talks to the backend's JSON API. It keeps the current token
// pair and transparently refreshes an expired access token once per call,
// the way the connection-level interceptor used to.
type HTTPClient struct {
	endpointURL string
	httpClient  *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(endpointURL string) *HTTPClient {
	return &HTTPClient{
		endpointURL: endpointURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// apiError is the error envelope every non-2xx response carries.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type userPayload struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	EmailVerified bool   `json:"email_verified"`
}

func (u *userPayload) principal() *identity.Principal {
	return &identity.Principal{
		UID:           u.UID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
	}
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// doJSON performs one authenticated request and decodes the response into
// out (which may be nil). On an expired access token it refreshes the pair
// and retries the original request once.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	err := c.doJSONOnce(ctx, method, path, in, out)
	if !errors.Is(err, common.ErrTokenExpired) {
		return err
	}

	_, refresh := c.tokens()
	if refresh == "" {
		return ErrUnauthorized
	}
	var tokens tokenPayload
	if err := c.doJSONOnce(ctx, http.MethodPost, "/api/user/refresh",
		map[string]string{"refresh_token": refresh}, &tokens); err != nil {
		return ErrUnauthorized
	}
	c.setTokens(tokens.AccessToken, tokens.RefreshToken)

	return c.doJSONOnce(ctx, method, path, in, out)
}

func (c *HTTPClient) doJSONOnce(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return errNotModified
	}
	if resp.StatusCode >= 400 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		return mapError(resp.StatusCode, &ae)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// mapError translates the response status and error code to a sentinel the
// caller can match with errors.Is.
func mapError(status int, ae *apiError) error {
	switch ae.Code {
	case "token_expired":
		return common.ErrTokenExpired
	case "refresh_token_expired":
		return common.ErrRefreshTokenExpired
	case "email_exists":
		return common.ErrorEmailAlreadyExists
	case "reauth_required":
		return common.ErrReauthRequired
	case "version_conflict":
		return common.ErrVersionConflict
	case "validation":
		return fmt.Errorf("%w: %s", common.ErrorValidation, ae.Error)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("api error (%d): %s", status, ae.Error)
	}
}

func (c *HTTPClient) Register(ctx context.Context, email, displayName string, salt, verifier []byte) error {
	in := map[string]string{
		"email":        email,
		"display_name": displayName,
		"salt":         base64.StdEncoding.EncodeToString(salt),
		"verifier":     base64.StdEncoding.EncodeToString(verifier),
	}
	return c.doJSON(ctx, http.MethodPost, "/api/user/register", in, nil)
}

func (c *HTTPClient) GetSalt(ctx context.Context, email string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	var out struct {
		Salt string `json:"salt"`
	}
	path := "/api/user/salt?email=" + url.QueryEscape(email)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(out.Salt)
}

func (c *HTTPClient) Login(ctx context.Context, email string, verifier []byte) (*identity.Principal, error) {
	in := map[string]string{
		"email":    email,
		"verifier": base64.StdEncoding.EncodeToString(verifier),
	}
	var out struct {
		tokenPayload
		User userPayload `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/user/login", in, &out); err != nil {
		return nil, err
	}
	c.setTokens(out.AccessToken, out.RefreshToken)
	return out.User.principal(), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, refresh := c.tokens()
	err := c.doJSON(ctx, http.MethodPost, "/api/user/logout",
		map[string]string{"refresh_token": refresh}, nil)
	if err != nil {
		return err
	}
	c.setTokens("", "")
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*identity.Principal, error) {
	var out userPayload
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/me", nil, &out); err != nil {
		return nil, err
	}
	return out.principal(), nil
}

func (c *HTTPClient) SendVerificationEmail(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/user/verification/send", nil, nil)
}

func (c *HTTPClient) ConfirmEmail(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/user/verification/confirm",
		map[string]string{"token": token}, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, verifier []byte) error {
	in := map[string]string{"verifier": base64.StdEncoding.EncodeToString(verifier)}
	err := c.doJSON(ctx, http.MethodDelete, "/api/user", in, nil)
	if err != nil {
		return err
	}
	c.setTokens("", "")
	return nil
}

func documentPath(path string) string {
	return "/api/documents/" + url.PathEscape(path)
}

func (c *HTTPClient) GetDocument(ctx context.Context, path string) (*docstore.Document, error) {
	var out struct {
		Path    string         `json:"path"`
		Fields  map[string]any `json:"fields"`
		Version int64          `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodGet, documentPath(path), nil, &out); err != nil {
		return nil, err
	}
	return &docstore.Document{Path: out.Path, Fields: out.Fields, Version: out.Version}, nil
}

// GetDocumentIfChanged is the poller's cheap fetch: the server answers an
// unchanged document with 304 and no body.
func (c *HTTPClient) GetDocumentIfChanged(ctx context.Context, path string, since int64) (*docstore.Document, bool, error) {
	var out struct {
		Path    string         `json:"path"`
		Fields  map[string]any `json:"fields"`
		Version int64          `json:"version"`
	}
	p := documentPath(path) + "?since=" + strconv.FormatInt(since, 10)
	err := c.doJSON(ctx, http.MethodGet, p, nil, &out)
	if errors.Is(err, errNotModified) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &docstore.Document{Path: out.Path, Fields: out.Fields, Version: out.Version}, true, nil
}

func (c *HTTPClient) ListDocuments(ctx context.Context, prefix string) ([]*docstore.Document, error) {
	var out struct {
		Documents []struct {
			Path    string         `json:"path"`
			Fields  map[string]any `json:"fields"`
			Version int64          `json:"version"`
		} `json:"documents"`
	}
	path := "/api/documents?prefix=" + url.QueryEscape(prefix)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	docs := make([]*docstore.Document, 0, len(out.Documents))
	for _, d := range out.Documents {
		docs = append(docs, &docstore.Document{Path: d.Path, Fields: d.Fields, Version: d.Version})
	}
	return docs, nil
}

func (c *HTTPClient) SetDocument(ctx context.Context, path string, fields map[string]any, merge bool) (int64, error) {
	in := map[string]any{"fields": fields, "merge": merge}
	var out struct {
		Version int64 `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodPut, documentPath(path), in, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, documentPath(path), nil, nil)
}

func (c *HTTPClient) ListFeedItems(ctx context.Context) ([]models.FeedItem, error) {
	var out struct {
		Items []models.FeedItem `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/feed", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *HTTPClient) AppendFeedItem(ctx context.Context, item models.FeedItem) error {
	return c.doJSON(ctx, http.MethodPost, "/api/feed", item, nil)
}

func (c *HTTPClient) MarkFeedItemRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/feed/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *HTTPClient) DeleteFeedItem(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/feed/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ClearFeed(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/feed", nil, nil)
}

func (c *HTTPClient) GetPresignedPutURL(ctx context.Context, fileName, contentType string) (string, string, error) {
	in := map[string]string{"file_name": fileName, "content_type": contentType}
	var out struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/files/presign-put", in, &out); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

func (c *HTTPClient) GetPresignedGetURL(ctx context.Context, key string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/api/files/presign-get?key=" + url.QueryEscape(key)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *HTTPClient) ResolveCollaborator(ctx context.Context, email string) (string, error) {
	var out struct {
		UID string `json:"uid"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/collaborators/resolve",
		map[string]string{"email": email}, &out)
	if err != nil {
		return "", err
	}
	return out.UID, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/ping", nil, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}
