// Package tasks runs the long-lived client operations: uploading PDFs, polling processing jobs and bulk deck exports.
//
// # Status Polling
//
// [Poller.Run] fetches a job's status, waits the poll interval and repeats until the job completes
// or fails. Fetches never overlap. On completion it waits the display delay and resolves to the
// review route for the produced deck. [Poller.Start] runs the same loop behind a [PollHandle] so a
// view can cancel it on teardown; after cancellation no update is sent and the handle resolves
// with [context.Canceled].
//
// # Upload
//
// [UploadAndProcess] rejects an empty selection and checks each file with [ValidatePDF]
// (github.com/ledongthuc/pdf) before anything is sent. It then uploads the files and starts
// processing with the configured topic-card options.
//
// # Bulk Export
//
// [BulkExport] exports many decks with a worker pool paced by a golang.org/x/time/rate limiter and
// writes a manifest through the formatter package.
//
// # Progress Reporting
//
// All operations send [ProgressUpdate] values on an optional channel without blocking; updates are
// dropped when the channel is full.
package tasks
