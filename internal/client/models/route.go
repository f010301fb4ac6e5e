package models

// Route names a screen of the view layer.
type Route string

const (
	RouteWelcome   Route = "welcome"
	RouteLogin     Route = "login"
	RouteSignup    Route = "signup"
	RouteProfile   Route = "profile"
	RouteFeed      Route = "feed"
	RoutePlan      Route = "plan"
	RouteTourGuide Route = "tourguide"
	RouteCallback  Route = "callback"
)

// Protected reports whether the route requires an authenticated user.
func (r Route) Protected() bool {
	return r == RouteProfile
}
