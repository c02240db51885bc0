package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email, display name and password and creates a
// new account. On success the user is signed in immediately; whether they
// make it past the gate depends on email verification.
//
// The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := getSimpleText(a.reader, "Enter display name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.provider.SignUp(ctx, email, password, displayName); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	a.printGateStatus()
	return nil
}

// Login prompts for credentials and signs in. The password is securely
// wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.provider.SignIn(ctx, email, password); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	log.Printf("Login successful")
	if err := a.feed.Refresh(ctx); err != nil {
		log.Printf("Could not load notification feed: %s", err.Error())
	}
	a.printGateStatus()
	return nil
}

func (a *App) printGateStatus() {
	if a.isLoggedIn() {
		return
	}
	fmt.Println("Your email is not verified yet.")
	fmt.Println("Use 'verify' to request a verification email, 'confirm' to enter the token, or 'skip' to proceed without verifying.")
}

// Verify asks the backend to send a verification email for the signed-in
// user.
func (a *App) Verify(ctx context.Context) error {
	if err := a.controller.SendVerificationEmail(ctx); err != nil {
		log.Printf("Could not send verification email: %s", err.Error())
		return err
	}
	fmt.Println("Verification email sent. Check your inbox.")
	return nil
}

// Confirm prompts for the token from the verification email and confirms
// the address, then refreshes the session's verification state.
func (a *App) Confirm(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter verification token", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.apiClient.ConfirmEmail(ctx, token); err != nil {
		log.Printf("Verification unsuccessful: %s", err.Error())
		return err
	}

	a.controller.RefreshVerificationState(ctx, a.provider.Current())
	if a.isLoggedIn() {
		fmt.Println("Email verified. Welcome!")
	}
	return nil
}

// Skip records the user's choice to proceed without a verified email. The
// choice persists across launches and is only cleared by signing out.
func (a *App) Skip(ctx context.Context) error {
	a.controller.AcknowledgeWithoutVerifying(ctx)
	fmt.Println("Proceeding without verification.")
	return nil
}

// Logout signs out and drops the in-memory feed mirror. Persisted feed
// items remain on the backend.
func (a *App) Logout(ctx context.Context) error {
	if err := a.controller.SignOut(ctx); err != nil {
		log.Printf("Logout unsuccessful: %s", err.Error())
		return err
	}
	a.feed.Reset()
	fmt.Println("Logged out.")
	return nil
}
