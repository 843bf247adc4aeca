// Package model defines the optional text-completion abstraction used by
// agents that can benefit from free-form generation (currently the
// counselor). Every agent must work without a Completer; the adapters in the
// anthropic and openai subpackages plug in the official SDK clients at
// wiring time.
package model
