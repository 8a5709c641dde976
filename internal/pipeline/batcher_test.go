package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kamatgc/AI-startup-analyst/internal/models"
)

func pages(n int) []models.PageImage {
	images := make([]models.PageImage, n)
	for i := range images {
		images[i] = models.PageImage{
			Index:    i,
			Path:     fmt.Sprintf("page_%d.png", i+1),
			MIMEType: "image/png",
		}
	}
	return images
}

func TestPartitionChunkCounts(t *testing.T) {
	tests := []struct {
		name       string
		pages      int
		window     int
		wantChunks int
		wantSizes  []int
	}{
		{name: "twelve pages window five", pages: 12, window: 5, wantChunks: 3, wantSizes: []int{5, 5, 2}},
		{name: "exact multiple", pages: 10, window: 5, wantChunks: 2, wantSizes: []int{5, 5}},
		{name: "single short chunk", pages: 3, window: 5, wantChunks: 1, wantSizes: []int{3}},
		{name: "window of one", pages: 4, window: 1, wantChunks: 4, wantSizes: []int{1, 1, 1, 1}},
		{name: "single page", pages: 1, window: 5, wantChunks: 1, wantSizes: []int{1}},
		{name: "empty document", pages: 0, window: 5, wantChunks: 0, wantSizes: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Partition(pages(tt.pages), tt.window)
			require.Len(t, chunks, tt.wantChunks)
			for i, chunk := range chunks {
				require.Equal(t, i, chunk.Index)
				require.Len(t, chunk.Images, tt.wantSizes[i])
			}
		})
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	chunks := Partition(pages(23), 5)

	next := 0
	for _, chunk := range chunks {
		for _, img := range chunk.Images {
			require.Equal(t, next, img.Index, "images must cover the sequence with no gaps or overlaps")
			next++
		}
	}
	require.Equal(t, 23, next)
}

func TestPartitionIsDeterministic(t *testing.T) {
	input := pages(17)
	require.Equal(t, Partition(input, 5), Partition(input, 5))
}

func TestPartitionInvalidWindow(t *testing.T) {
	require.Nil(t, Partition(pages(5), 0))
}
