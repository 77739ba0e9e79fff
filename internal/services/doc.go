// Package services hosts the external integration clients (yt-dlp,
// Deepgram, Anthropic) and the shared error taxonomy they report through.
//
// Every client converts transport and tool failures into sentinel-tagged
// errors so the pipeline can decide, at the per-record boundary, which
// record error tag to persist. Clients never panic and never let a
// failure escape as anything other than an error return.
package services
