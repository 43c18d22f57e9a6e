package config

import "time"

type Service struct{}

var _ ServiceConfig = Service{}

// GetServiceBaseURL returns the base URL of the remote reporting service
// (e.g., "https://indicators.example.com")
func (Service) GetServiceBaseURL() string {
	return GetEnv(serviceURLVar, "http://localhost:5000")
}

func (Service) GetRequestTimeout() Duration {
	return GetDurationEnv("REQUEST_TIMEOUT", 10*time.Second)
}

// GetTokenRefreshThreshold returns how close to its expiry a bearer token may
// get before the client warns that re-authentication is due.
func (Service) GetTokenRefreshThreshold() Duration {
	return GetDurationEnv("TOKEN_REFRESH_THRESHOLD", 5*time.Minute)
}
