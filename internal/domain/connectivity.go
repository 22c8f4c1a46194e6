package domain

// ConnectivityState is the process-wide online/offline flag
type ConnectivityState string

const (
	Online  ConnectivityState = "online"
	Offline ConnectivityState = "offline"
)
