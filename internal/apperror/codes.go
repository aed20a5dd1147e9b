package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Arbitrage engine error codes
const (
	// Input validation
	CodeInvalidPair   Code = "INVALID_PAIR"
	CodeInvalidAmount Code = "INVALID_AMOUNT"
	CodeInvalidPrice  Code = "INVALID_PRICE"

	// Venue registry
	CodeVenueNotFound Code = "VENUE_NOT_FOUND"

	// Price sources
	CodePriceSourceError  Code = "PRICE_SOURCE_ERROR"
	CodePriceStale        Code = "PRICE_STALE"
	CodePairNotQuoted     Code = "PAIR_NOT_QUOTED"
	CodeOrderbookCrossed  Code = "ORDERBOOK_CROSSED"
	CodeStreamUnavailable Code = "STREAM_UNAVAILABLE"

	// Gas oracle / Ethereum
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeGasOracleError           Code = "GAS_ORACLE_ERROR"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
