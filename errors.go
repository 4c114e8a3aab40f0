package beanforge

import (
	"github.com/xraph/beanforge/internal/errors"
)

type (
	BeanError     = errors.BeanError
	CreationError = errors.CreationError
)

// Creation phases reported by CreationError.
const (
	PhaseInstantiate        = errors.PhaseInstantiate
	PhaseBeforeInstantiate  = errors.PhaseBeforeInstantiate
	PhaseBeforeInit         = errors.PhaseBeforeInit
	PhaseInit               = errors.PhaseInit
	PhaseAfterInit          = errors.PhaseAfterInit
	PhaseFactoryInterceptor = errors.PhaseFactoryInterceptor
)

var (
	ErrInvalidInterceptor = errors.ErrInvalidInterceptor
	ErrNilInstance        = errors.ErrNilInstance
	ErrTypeMismatch       = errors.ErrTypeMismatch
	ErrContainerActive    = errors.ErrContainerActive
	ErrContainerClosed    = errors.ErrContainerClosed
	ErrMetadataUnreadable = errors.ErrMetadataUnreadable
	ErrNotAUnit           = errors.ErrNotAUnit
)

// Re-export sentinel errors for error comparison using errors.Is().
var (
	ErrDefinitionNotFoundSentinel      = errors.ErrDefinitionNotFoundSentinel
	ErrDefinitionAlreadyExistsSentinel = errors.ErrDefinitionAlreadyExistsSentinel
	ErrInvalidDefinitionSentinel       = errors.ErrInvalidDefinitionSentinel
	ErrCreationFailedSentinel          = errors.ErrCreationFailedSentinel
	ErrCircularDependencySentinel      = errors.ErrCircularDependencySentinel
	ErrConfigInconsistentSentinel      = errors.ErrConfigInconsistentSentinel
	ErrContainerStateSentinel          = errors.ErrContainerStateSentinel
	ErrConfigErrorSentinel             = errors.ErrConfigErrorSentinel
)

var (
	IsDefinitionNotFound = errors.IsDefinitionNotFound
	IsCircularDependency = errors.IsCircularDependency
	IsConfigInconsistent = errors.IsConfigInconsistent
	IsCreationFailed     = errors.IsCreationFailed
)
