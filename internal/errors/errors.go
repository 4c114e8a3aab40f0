package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ERROR CODES
// =============================================================================

// Error code constants for structured errors
const (
	CodeDefinitionNotFound      = "DEFINITION_NOT_FOUND"
	CodeDefinitionAlreadyExists = "DEFINITION_ALREADY_EXISTS"
	CodeInvalidDefinition       = "INVALID_DEFINITION"
	CodeCreationFailed          = "BEAN_CREATION_FAILED"
	CodeCircularDependency      = "CIRCULAR_DEPENDENCY"
	CodeConfigInconsistent      = "CONFIGURATION_INCONSISTENT"
	CodeContainerState          = "CONTAINER_STATE"
	CodeConfigError             = "CONFIG_ERROR"
)

// Creation phases reported by CreationError.
const (
	PhaseInstantiate        = "instantiate"
	PhaseBeforeInstantiate  = "before_instantiation"
	PhaseBeforeInit         = "before_init"
	PhaseInit               = "init"
	PhaseAfterInit          = "after_init"
	PhaseFactoryInterceptor = "factory_interceptor"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrInvalidInterceptor = errors.New("interceptor must implement BeforeInitializer or AfterInitializer")
	ErrNilInstance        = errors.New("bean factory returned nil instance")
	ErrTypeMismatch       = errors.New("bean type mismatch")
	ErrContainerActive    = errors.New("container already refreshed")
	ErrContainerClosed    = errors.New("container is not active")
	ErrMetadataUnreadable = errors.New("class metadata unreadable")
	ErrNotAUnit           = errors.New("bean is not a configuration unit")
)

// =============================================================================
// CREATION ERROR
// =============================================================================

// CreationError wraps a failure while building one bean.
type CreationError struct {
	Bean        string
	Phase       string
	Interceptor string
	Err         error
}

func (e *CreationError) Error() string {
	if e.Bean == "" {
		return fmt.Sprintf("%s (interceptor %s): %v", e.Phase, e.Interceptor, e.Err)
	}
	if e.Interceptor != "" {
		return fmt.Sprintf("bean %s: %s (interceptor %s): %v", e.Bean, e.Phase, e.Interceptor, e.Err)
	}
	return fmt.Sprintf("bean %s: %s: %v", e.Bean, e.Phase, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// Is matches another CreationError on bean and phase; empty fields act as wildcards.
func (e *CreationError) Is(target error) bool {
	t, ok := target.(*CreationError)
	if !ok {
		return false
	}
	return (e.Bean == "" || t.Bean == "" || e.Bean == t.Bean) &&
		(e.Phase == "" || t.Phase == "" || e.Phase == t.Phase)
}

// NewCreationError creates a new creation error
func NewCreationError(bean, phase string, err error) *CreationError {
	return &CreationError{
		Bean:  bean,
		Phase: phase,
		Err:   err,
	}
}

// NewInterceptorError attributes a creation failure to a named interceptor.
func NewInterceptorError(bean, phase, interceptor string, err error) *CreationError {
	return &CreationError{
		Bean:        bean,
		Phase:       phase,
		Interceptor: interceptor,
		Err:         err,
	}
}

// =============================================================================
// BEAN ERROR (STRUCTURED ERROR)
// =============================================================================

// BeanError represents a structured error with context
type BeanError struct {
	Code      string
	Message   string
	Cause     error
	Timestamp time.Time
	Context   map[string]any
}

func (e *BeanError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *BeanError) Unwrap() error {
	return e.Cause
}

// Is compares by error code so constructed errors match the sentinels below.
func (e *BeanError) Is(target error) bool {
	t, ok := target.(*BeanError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithContext adds context to the error
func (e *BeanError) WithContext(key string, value any) *BeanError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newBeanError(code, message string, cause error, ctx map[string]any) *BeanError {
	return &BeanError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   ctx,
	}
}

func ErrDefinitionNotFound(beanName string) *BeanError {
	return newBeanError(CodeDefinitionNotFound,
		"no bean definition named '"+beanName+"'",
		nil,
		map[string]any{"bean_name": beanName})
}

func ErrDefinitionAlreadyExists(beanName string) *BeanError {
	return newBeanError(CodeDefinitionAlreadyExists,
		"bean definition '"+beanName+"' already registered",
		nil,
		map[string]any{"bean_name": beanName})
}

func ErrInvalidDefinition(beanName, reason string) *BeanError {
	return newBeanError(CodeInvalidDefinition,
		"invalid bean definition '"+beanName+"': "+reason,
		nil,
		map[string]any{"bean_name": beanName})
}

func ErrCircularDependency(chain []string) *BeanError {
	return newBeanError(CodeCircularDependency,
		"circular dependency detected: "+strings.Join(chain, " -> "),
		nil,
		map[string]any{"beans": chain})
}

// ErrConfigInconsistent reports a guarded call that the container cannot map back
// to a definition. It means the wrapper and the classifier disagree about a unit.
func ErrConfigInconsistent(unit, method string) *BeanError {
	return newBeanError(CodeConfigInconsistent,
		fmt.Sprintf("method %s.%s was routed through the singleton guard but has no bean definition", unit, method),
		nil,
		map[string]any{"unit": unit, "method": method})
}

func ErrCreationFailed(beanName string, cause error) *BeanError {
	return newBeanError(CodeCreationFailed,
		"error creating bean '"+beanName+"'",
		cause,
		map[string]any{"bean_name": beanName})
}

func ErrContainerState(operation string, cause error) *BeanError {
	return newBeanError(CodeContainerState,
		"container error during "+operation,
		cause,
		map[string]any{"operation": operation})
}

func ErrConfigError(message string, cause error) *BeanError {
	return newBeanError(CodeConfigError, message, cause, map[string]any{})
}

// =============================================================================
// STANDARD ERRORS PACKAGE INTEGRATION
// =============================================================================

// Is is a convenience wrapper around errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is a convenience wrapper around errors.New from the standard library.
func New(text string) error {
	return errors.New(text)
}

// =============================================================================
// SENTINEL ERRORS (for use with Is)
// =============================================================================

var (
	ErrDefinitionNotFoundSentinel      = &BeanError{Code: CodeDefinitionNotFound}
	ErrDefinitionAlreadyExistsSentinel = &BeanError{Code: CodeDefinitionAlreadyExists}
	ErrInvalidDefinitionSentinel       = &BeanError{Code: CodeInvalidDefinition}
	ErrCreationFailedSentinel          = &BeanError{Code: CodeCreationFailed}
	ErrCircularDependencySentinel      = &BeanError{Code: CodeCircularDependency}
	ErrConfigInconsistentSentinel      = &BeanError{Code: CodeConfigInconsistent}
	ErrContainerStateSentinel          = &BeanError{Code: CodeContainerState}
	ErrConfigErrorSentinel             = &BeanError{Code: CodeConfigError}
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDefinitionNotFound checks if the error is a missing definition error
func IsDefinitionNotFound(err error) bool {
	return Is(err, ErrDefinitionNotFoundSentinel)
}

// IsCircularDependency checks if the error is a circular dependency error
func IsCircularDependency(err error) bool {
	return Is(err, ErrCircularDependencySentinel)
}

// IsConfigInconsistent checks if the error is a guard misuse error
func IsConfigInconsistent(err error) bool {
	return Is(err, ErrConfigInconsistentSentinel)
}

// IsCreationFailed checks if the error is a bean creation failure
func IsCreationFailed(err error) bool {
	return Is(err, ErrCreationFailedSentinel)
}
