package version

// Version is the current version of the voicewell server
const Version = "0.1.0"

// ServerHeader returns the Server header value for HTTP responses
func ServerHeader() string {
	return "voicewell/" + Version
}
