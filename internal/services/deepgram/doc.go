// Package deepgram calls the Deepgram prerecorded transcription API and
// flattens its diarized responses into speaker-labelled text.
package deepgram
