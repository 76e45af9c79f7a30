// Package gemini provides an implementation of the summary.Summarizer
// interface backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it renders the task prompt,
// calls the model with a bounded timeout, retries transient failures with
// exponential backoff and jitter, and translates API outcomes into the
// errors defined by package summary.
package gemini
