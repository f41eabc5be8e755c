// Package gomkore implements the core model for the representation of
// buildable projects. It uses idiomatic Go error handling, which can make
// writing build scripts a bit cumbersome. However, this package serves as a
// solid foundation for implementing build strategies, such as updating
// artefacts depending on their prerequisites, propagating artefact changes to
// dependent artefacts or cleaning generated artefacts. The core concepts are
// [Project], [Goal] and [Action]. Build steps of a certain kind are declared
// through a [StepBuilder] that is registered by name in an [Env].
package gomkore
