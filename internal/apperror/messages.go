package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Input validation
	CodeInvalidPair:   "Invalid trading pair",
	CodeInvalidAmount: "Trade amount must be positive",
	CodeInvalidPrice:  "Price must be positive",

	// Venue registry
	CodeVenueNotFound: "Venue not found in registry",

	// Price sources
	CodePriceSourceError:  "Price source request failed",
	CodePriceStale:        "Price data is stale",
	CodePairNotQuoted:     "Pair not quoted on venue",
	CodeOrderbookCrossed:  "Ask below bid in quote",
	CodeStreamUnavailable: "Price stream unavailable",

	// Gas oracle / Ethereum
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeGasOracleError:           "Gas price lookup failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
