package core

// ArchiveStore persists full reply transcripts keyed by channel and reply id.
// The relay archives a transcript after each completed delivery; the store is
// the durable counterpart of the attachment the pipeline uploads to the
// surface for paginated replies.
type ArchiveStore interface {
	Save(channelID, replyID string, transcript []byte) error
	Get(channelID, replyID string) ([]byte, error)
	List(channelID string) ([]string, error)
	Delete(channelID, replyID string) error
}
