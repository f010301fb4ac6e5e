package cli

import (
	"fmt"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
)

// screenLines renders route for the given auth state. The profile screen
// guards itself: without a user it only offers the way to login.
func screenLines(route models.Route, st models.AuthState) []string {
	switch route {
	case models.RouteWelcome:
		return []string{
			"Hi ! Traveler",
			"Welcome !",
			"It's Big Word Out. There Go Explore",
			"",
			"Manage Your Traveling Journey",
			"  login   Application Login",
			"  signup  Signup",
		}
	case models.RouteLogin:
		return []string{"Login", "  login   sign in with email and password", "  forgot  reset your password", "  signup  create an account"}
	case models.RouteSignup:
		return []string{"Create Account", "  signup  full name, email and password"}
	case models.RouteCallback:
		return []string{"Verifying your email..."}
	case models.RouteFeed:
		return []string{"Feed", "Feed will be displayed here."}
	case models.RoutePlan:
		return []string{
			"Trip Plan",
			"Plan will be displayed here.",
			"More details about the travel plan can be added here.",
		}
	case models.RouteTourGuide:
		return []string{"Tour Guide", "Tour Guide will be displayed here."}
	case models.RouteProfile:
		return profileLines(st)
	default:
		return []string{fmt.Sprintf("unknown screen %q", route)}
	}
}

func profileLines(st models.AuthState) []string {
	switch {
	case st.Status == models.StatusLoading || st.Status == models.StatusUnknown:
		return []string{"Tripzy", "Loading..."}
	case !st.IsAuthenticated():
		return []string{"Not authenticated", "  login   Go to Login"}
	}
	return []string{
		"Tripzy",
		fmt.Sprintf("Welcome, %s!", st.User.Greeting()),
		st.User.Email,
		"",
		"  feed | plan | guide   explore",
		"  logout                sign out",
	}
}

// routeFor maps a REPL command to the screen it opens.
func routeFor(cmd string) (models.Route, bool) {
	switch cmd {
	case "home":
		return models.RouteWelcome, true
	case "profile":
		return models.RouteProfile, true
	case "feed":
		return models.RouteFeed, true
	case "plan":
		return models.RoutePlan, true
	case "guide":
		return models.RouteTourGuide, true
	}
	return "", false
}
