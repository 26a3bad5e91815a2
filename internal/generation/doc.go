// Package generation defines the boundary between the tutor and the remote
// language model. The Tutor interface analyzes a document into intelligence
// and assessment questions, and evaluates a learner's answer against a
// question's hidden rubric. Adapters such as the Gemini implementation live
// under internal/platform.
package generation
