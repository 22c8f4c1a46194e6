package connectivity

// Advisory names which subsystem the banner warns about
type Advisory string

const (
	AdvisoryNone      Advisory = "none"
	AdvisoryAPI       Advisory = "api"
	AdvisoryWebSocket Advisory = "websocket"
	AdvisoryBoth      Advisory = "both"
	AdvisoryAuth      Advisory = "auth"
)

var advisoryMessages = map[Advisory]string{
	AdvisoryAPI:       "Unable to reach the server. Some features may be unavailable until the connection is restored.",
	AdvisoryWebSocket: "Live updates are paused. Changes will appear when the realtime connection is restored.",
	AdvisoryBoth:      "You are offline. You can keep working with cached data and changes will sync when you reconnect.",
	AdvisoryAuth:      "Sign-in service is unreachable. You are using an offline session with limited access.",
}

// Reachability is the latest known state of each dependent subsystem
type Reachability struct {
	API       bool `json:"api"`
	WebSocket bool `json:"websocket"`
	Auth      bool `json:"auth"`
}

// AllReachable is the state with nothing to report
var AllReachable = Reachability{API: true, WebSocket: true, Auth: true}

// Classify picks the advisory for a reachability snapshot. API and realtime
// loss together outrank either alone, and both outrank the identity verifier.
func Classify(apiReachable, wsReachable, authReachable bool) Advisory {
	switch {
	case !apiReachable && !wsReachable:
		return AdvisoryBoth
	case !apiReachable:
		return AdvisoryAPI
	case !wsReachable:
		return AdvisoryWebSocket
	case !authReachable:
		return AdvisoryAuth
	default:
		return AdvisoryNone
	}
}

// Classify is the snapshot form of the package-level Classify
func (r Reachability) Classify() Advisory {
	return Classify(r.API, r.WebSocket, r.Auth)
}

// Message returns the canned banner text, empty for AdvisoryNone
func (a Advisory) Message() string {
	return advisoryMessages[a]
}
