// Package queue hands publication work off the request path: either to an
// in-process worker pool or to a durable RabbitMQ queue.
package queue

import (
	"context"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobPublish   JobKind = "publish"
	JobUnpublish JobKind = "unpublish"
)

// Job is one unit of post-commit publication work. Unpublish jobs carry the
// site and remote post id because the placement row is already gone.
type Job struct {
	ID          string  `json:"id"`
	Kind        JobKind `json:"kind"`
	PlacementID int     `json:"placement_id"`
	SiteID      int     `json:"site_id"`
	PostID      int     `json:"post_id,omitempty"`
}

func PublishJob(placementID, siteID int) Job {
	return Job{ID: uuid.NewString(), Kind: JobPublish, PlacementID: placementID, SiteID: siteID}
}

func UnpublishJob(placementID, siteID, postID int) Job {
	return Job{ID: uuid.NewString(), Kind: JobUnpublish, PlacementID: placementID, SiteID: siteID, PostID: postID}
}

type Handler func(ctx context.Context, job Job) error

type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}
