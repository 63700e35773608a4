package server

// Route path constants
const (
	RouteAPIv1 = "/pi/v1"
	RouteAPIv2 = "/pi/v2"

	// Accounts, relative to the API version
	RouteCheckUser          = "/signup/check-user"
	RouteSendSignupToken    = "/signup/send-token"
	RouteCheckSignupToken   = "/signup/check-token"
	RouteSignup             = "/signup"
	RouteSignin             = "/signin"
	RouteSocialSignin       = "/social-signin"
	RouteMe                 = "/me"
	RouteChangeAvatar       = "/me/change-avatar"
	RouteRefreshToken       = "/me/refresh-token"
	RouteEnableTFA          = "/me/enable-tfa"
	RouteDisableTFA         = "/me/disable-tfa"
	RouteChangePassword     = "/me/passwd"
	RouteSendPasswordToken  = "/me/passwd/send-token"
	RouteCheckPasswordToken = "/me/passwd/check-token"
	RouteResetPassword      = "/me/passwd/reset"
	RouteUsers              = "/users"
	RouteUser               = "/users/{id}"
	RouteUserNotes          = "/users/{id}/notes"

	// Notes and comments
	RouteNotes    = "/me/notes"
	RouteNote     = "/me/notes/{id}"
	RouteComments = "/comments"
	RouteComment  = "/comments/{id}"

	// Common
	RouteFruits    = "/fruits"
	RouteFruit     = "/fruits/{id}"
	RouteLocaltime = "/localtime"
	RouteEcho      = "/echo"
	RouteRoomSend  = "/rooms/{id}/send"

	RouteGraphQL = "/gql/"
	RouteMetrics = "/metrics"
	RouteFiles   = "/files/"

	RouteWSEcho  = "/ws/v1/echo/"
	RouteWSRoom  = "/ws/v1/rooms/{id}/"
	RouteWSNotes = "/ws/v1/notes/"
)
