package pipeline

import "github.com/kamatgc/AI-startup-analyst/internal/models"

// Partition splits an ordered page-image sequence into fixed-size,
// order-preserving chunks of at most window images each. The chunks cover the
// sequence with no gaps and no overlaps; only the last chunk may be short.
// Zero images yields zero chunks. Pure function; callers must pass window >= 1.
func Partition(images []models.PageImage, window int) []models.Chunk {
	if window < 1 || len(images) == 0 {
		return nil
	}

	chunks := make([]models.Chunk, 0, (len(images)+window-1)/window)
	for start := 0; start < len(images); start += window {
		end := start + window
		if end > len(images) {
			end = len(images)
		}
		chunks = append(chunks, models.Chunk{
			Index:  len(chunks),
			Images: images[start:end],
		})
	}
	return chunks
}
