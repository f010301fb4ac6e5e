package cli

import (
	"context"
	"fmt"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/common"
)

// getStatus is the prompt text: the screen plus who is signed in.
func (a *App) getStatus() string {
	st := a.auth.State()
	who := string(st.Status)
	if st.IsAuthenticated() {
		who = st.User.Email
	}
	return fmt.Sprintf("(%s %s)", a.screens.Current(), who)
}

// Root prints the banner and the first screen, then runs the REPL. It
// returns when the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn(fmt.Sprintf("Welcome to %s (type 'help' for commands)", common.AppName))

	if a.isLoggedIn() {
		// a cached session skips the welcome screen
		a.screens.Replace(models.RouteProfile)
	}
	a.render()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.watchState(ctx)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) render() {
	for _, line := range screenLines(a.screens.Current(), a.auth.State()) {
		printlnFn(line)
	}
}
