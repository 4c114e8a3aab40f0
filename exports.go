package beanforge

import (
	"github.com/xraph/beanforge/internal/configclass"
	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/di"
	"github.com/xraph/beanforge/internal/enhance"
	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/internal/ordering"
	"github.com/xraph/beanforge/internal/postprocess"
	"github.com/xraph/beanforge/logger"
)

type Logger = logger.Logger

// Definitions.
type (
	Definition = definition.Definition
	Registry   = definition.Registry
	Scope      = definition.Scope
	Supplier   = definition.Supplier
)

const (
	ScopeSingleton = definition.ScopeSingleton
	ScopePrototype = definition.ScopePrototype
)

var (
	NewDefinition    = definition.New
	ForValue         = definition.ForValue
	ForFactoryMethod = definition.ForFactoryMethod
)

// Class metadata.
type (
	Annotation       = metadata.Annotation
	MethodDescriptor = metadata.MethodDescriptor
	ClassDescriptor  = metadata.ClassDescriptor
	MetadataView     = metadata.View
	MetadataReader   = metadata.Reader
	DescriptorStore  = metadata.DescriptorStore
)

const (
	AnnotationConfiguration  = metadata.Configuration
	AnnotationComponent      = metadata.Component
	AnnotationComponentScan  = metadata.ComponentScan
	AnnotationImport         = metadata.Import
	AnnotationImportResource = metadata.ImportResource
	AnnotationBean           = metadata.Bean
	AnnotationOrder          = metadata.Order
)

var (
	NewClassDescriptor = metadata.NewClassDescriptor
	NewDescriptorStore = metadata.NewDescriptorStore
)

// Configuration units.
type (
	Unit       = enhance.Unit
	Method     = enhance.Method
	Body       = enhance.Body
	Dispatcher = enhance.Dispatcher
	Invocation = enhance.Invocation
)

var CurrentInvocation = enhance.CurrentInvocation

// Classification.
type ClassificationTag = configclass.Tag

const (
	ClassificationFull = configclass.Full
	ClassificationLite = configclass.Lite
	ClassificationNone = configclass.None
)

var (
	IsFullConfigurationClass = configclass.IsFullConfigurationClass
	IsLiteConfigurationClass = configclass.IsLiteConfigurationClass
	GetOrder                 = configclass.GetOrder
)

// Ordering.
type (
	Ordered         = ordering.Ordered
	PriorityOrdered = ordering.PriorityOrdered
)

const (
	HighestPrecedence = ordering.HighestPrecedence
	LowestPrecedence  = ordering.LowestPrecedence
)

// Interceptors.
type (
	Interceptor              = postprocess.Interceptor
	BeforeInitializer        = postprocess.BeforeInitializer
	AfterInitializer         = postprocess.AfterInitializer
	InstantiationInterceptor = postprocess.InstantiationInterceptor
	FactoryInterceptor       = postprocess.FactoryInterceptor
	InterceptorFunc          = postprocess.InterceptorFunc
	Result                   = postprocess.Result
)

var (
	Replaced       = postprocess.Replaced
	StopChain      = postprocess.StopChain
	NewInterceptor = postprocess.NewInterceptor
)

// Bean lifecycle callbacks.
type (
	NameAware   = di.NameAware
	Initializer = di.Initializer
	Disposer    = di.Disposer
)
