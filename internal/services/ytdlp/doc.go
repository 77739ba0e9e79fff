// Package ytdlp mediates access to the yt-dlp CLI used for channel
// discovery and audio acquisition.
//
// It normalizes command invocation, parses flat-playlist JSON output,
// and exposes testable interfaces so the discovery and acquisition
// stages never shell out directly.
package ytdlp
