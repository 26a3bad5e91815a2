// Package domain contains the core business entities, value objects, and
// domain logic of the tutor: users, assessment sessions, questions with
// hidden rubrics, evaluation results, and the learner memory that
// accumulates across evaluations. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
