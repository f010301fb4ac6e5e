package cli

import (
	"context"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/client/services"
	"github.com/KMDPriyashan/tripzy/internal/common"
)

// getSimpleText and getPassword point at the interactive input helpers and
// are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) notify(n services.Notice) {
	printlnFn("[" + n.Title + "] " + n.Message)
	switch n.Action {
	case services.ActionRetry:
		printlnFn("  (run the command again to retry)")
	case services.ActionResend:
		printlnFn("  (type 'resend' to get a new verification email)")
	}
}

func success(title, msg string) services.Notice {
	return services.Notice{Title: title, Message: msg, Action: services.ActionAcknowledge}
}

// SignUp prompts for full name, email and password and creates an account.
func (a *App) SignUp(ctx context.Context) error {
	a.screens.Push(models.RouteSignup)

	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.auth.SignUp(ctx, name, email, string(password))
	if err != nil {
		a.notify(services.ErrorNotice("Signup Error", err))
		return err
	}

	switch res.Outcome {
	case services.OutcomeSignedIn:
		a.notify(success("Success", "Account created successfully!"))
	case services.OutcomeVerificationRequired:
		a.pendingEmail = services.NormalizeEmail(email)
		a.notify(success("Success", "Account created successfully! Please check your email for verification."))
		if a.confirm != nil {
			printlnFn("  (offline mode: type 'verify' to confirm the address)")
		}
	case services.OutcomeSuperseded:
		printlnFn("Signed out while the request was in progress.")
	}
	a.render()
	return nil
}

// Login prompts for credentials and signs in. An unverified account gets a
// notice offering to resend the confirmation email.
func (a *App) Login(ctx context.Context) error {
	a.screens.Push(models.RouteLogin)

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.auth.SignIn(ctx, email, string(password))
	if err != nil {
		n := services.ErrorNotice("Login Error", err)
		if n.Action == services.ActionResend {
			a.pendingEmail = services.NormalizeEmail(email)
		}
		a.notify(n)
		return err
	}

	switch res.Outcome {
	case services.OutcomeSignedIn:
		a.pendingEmail = ""
		a.notify(success("Success!", "You have successfully logged in."))
	case services.OutcomeVerificationRequired:
		a.pendingEmail = services.NormalizeEmail(email)
		a.notify(services.Notice{
			Title:   "Email Not Verified",
			Message: "Please verify your email address before logging in. Check your inbox for the verification link.",
			Action:  services.ActionResend,
		})
	case services.OutcomeSuperseded:
		printlnFn("Signed out while the request was in progress.")
	}
	a.render()
	return nil
}

// Logout always ends the local session; a failed remote revocation is only
// logged by the controller.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.SignOut(ctx)
	printlnFn("You have been logged out.")
	a.render()
	return err
}

// Forgot sends a password reset link.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.RequestPasswordReset(ctx, email); err != nil {
		a.notify(services.ErrorNotice("Error", err))
		return err
	}
	a.notify(success("Success", "Password reset email sent! Please check your inbox."))
	return nil
}

// Resend mails the sign-up confirmation again, to the pending address when
// there is one.
func (a *App) Resend(ctx context.Context) error {
	email, err := a.emailOrPrompt()
	if err != nil {
		return err
	}
	if err := a.auth.ResendVerification(ctx, email); err != nil {
		a.notify(services.ErrorNotice("Error", err))
		return err
	}
	a.notify(success("Success", "Verification email sent! Please check your inbox."))
	return nil
}

// Verify runs the email confirmation callback. With the memory store it
// first confirms the pending address itself.
func (a *App) Verify(ctx context.Context) error {
	a.screens.Push(models.RouteCallback)
	a.render()

	if a.confirm != nil {
		email, err := a.emailOrPrompt()
		if err != nil {
			return err
		}
		if err := a.confirm(email); err != nil {
			a.logger.Warn(ctx, "confirm email", "error", err)
			a.screens.Replace(models.RouteLogin)
			a.notify(services.Notice{
				Title:   "Verification Error",
				Message: "There was an issue verifying your email. Please try again.",
				Action:  services.ActionAcknowledge,
			})
			return err
		}
		a.pendingEmail = ""
	}

	_, n := a.auth.HandleEmailConfirmation(ctx)
	a.notify(n)
	a.render()
	return nil
}

// Show opens route on top of the current screen.
func (a *App) Show(_ context.Context, route models.Route) error {
	a.screens.Push(route)
	a.render()
	return nil
}

func (a *App) Back(context.Context) error {
	if !a.screens.Back() {
		printlnFn("Nothing to go back to.")
		return nil
	}
	a.render()
	return nil
}

func (a *App) emailOrPrompt() (string, error) {
	if a.pendingEmail != "" {
		return a.pendingEmail, nil
	}
	return getSimpleText(a.reader, "Email", a.out)
}
