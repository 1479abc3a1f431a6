// Package pipeline runs configuration analyses as a sequence of steps.
//
// A single analysis loads the running-config (LoadStep), runs the parser and
// best-practice checks over it (AnalyzeStep), and optionally stores the
// result in the history database (SaveStep). Each step receives the same
// AnalysisReport and fills in its part.
//
// Input policy (allowed extensions and maximum size) is enforced by the load
// step for files on disk and for content that is already in memory, such as
// an HTTP upload.
//
// BatchProcessor analyzes many files concurrently with errgroup. Every file
// gets a fresh pipeline and a fresh run ID, and a failing file does not stop
// the others.
package pipeline
