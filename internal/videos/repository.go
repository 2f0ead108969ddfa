package videos

import (
	"context"
	"errors"
	"sort"

	"github.com/airtime-feed/backend/internal/models"
)

// ErrReadOnly is returned by repositories that cannot store records.
var ErrReadOnly = errors.New("videos: repository is read-only")

// Repository is the video metadata store.
type Repository interface {
	List(ctx context.Context) ([]models.Video, error)
	Create(ctx context.Context, v *models.Video) error
}

// FilterActive drops records with isActive explicitly false. Schedules are not applied.
func FilterActive(list []models.Video) []models.Video {
	out := make([]models.Video, 0, len(list))
	for _, v := range list {
		if v.Active() {
			out = append(out, v)
		}
	}
	return out
}

// sortByUpload orders records by upload time, then id.
func sortByUpload(list []models.Video) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].UploadedAt.Equal(list[j].UploadedAt) {
			return list[i].UploadedAt.Before(list[j].UploadedAt)
		}
		return list[i].ID < list[j].ID
	})
}
