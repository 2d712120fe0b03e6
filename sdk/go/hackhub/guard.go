package hackhub

// Action is what a protected view should do.
type Action int

const (
	// RenderNothing is returned while the session is still loading, so a
	// signed-in user never sees a flash of the login redirect.
	RenderNothing Action = iota
	RenderContent
	Redirect
)

func (a Action) String() string {
	switch a {
	case RenderNothing:
		return "render_nothing"
	case RenderContent:
		return "render_content"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Guard.
type Decision struct {
	Action Action
	// Location is the redirect target when Action is Redirect.
	Location string
	// Replace means the redirect replaces the current history entry, so
	// going back does not return to the protected page.
	Replace bool
}

// Guard decides whether a protected view may render for the given state.
func Guard(state State, loginPath string) Decision {
	switch {
	case state.IsLoading:
		return Decision{Action: RenderNothing}
	case state.IsAuthenticated():
		return Decision{Action: RenderContent}
	default:
		return Decision{Action: Redirect, Location: loginPath, Replace: true}
	}
}
