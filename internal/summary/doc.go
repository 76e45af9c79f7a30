// Package summary defines the boundary between the service and the
// generative model that writes natural language overviews of task lists.
//
// Summarizer implementations live in infrastructure packages (see
// internal/platform/gemini). Their errors are reported to callers as data,
// never as request failures; that translation happens in the service layer.
package summary
