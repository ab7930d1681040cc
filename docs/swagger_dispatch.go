package docs

// @title           Driver Dispatch Service API
// @version         1.0
// @description     Dispatch service handles driver duty transitions (beacon), proximity passenger-driver matching with pickup offers, streamed driver location updates and per-order trip distance tracking over WebSocket.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
