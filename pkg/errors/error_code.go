package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Input errors (100-199)
	ErrCodeInvalidParameter    ErrorCode = 100
	ErrCodeInvalidForecast     ErrorCode = 101
	ErrCodeInvalidOrder        ErrorCode = 102
	ErrCodeInvalidPrice        ErrorCode = 103
	ErrCodeInvalidSettings     ErrorCode = 104
	ErrCodeInvalidPriceSample  ErrorCode = 105
	ErrCodeInsufficientData    ErrorCode = 106
	ErrCodeInvalidPeriod       ErrorCode = 107
	ErrCodeDuplicateSubmission ErrorCode = 108

	// Configuration errors (200-299)
	ErrCodeConfigReadFailed  ErrorCode = 200
	ErrCodeConfigParseFailed ErrorCode = 201
	ErrCodeInvalidConfig     ErrorCode = 202
	ErrCodeVersionMismatch   ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Forecast errors (400-499)
	ErrCodeForecastFailed      ErrorCode = 400
	ErrCodeForecastUnavailable ErrorCode = 401

	// Execution errors (500-599)
	ErrCodeExecutionFailed  ErrorCode = 500
	ErrCodeExecutionTimeout ErrorCode = 501
	ErrCodeSizingFailed     ErrorCode = 502

	// Engine errors (600-699)
	ErrCodeEngineNotStarted ErrorCode = 600
	ErrCodeFeedFailed       ErrorCode = 601
)
