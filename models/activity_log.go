package models

import "time"

// ActivityLog is an audit document written to MongoDB for every lifecycle action.
type ActivityLog struct {
	Action      string    `bson:"action" json:"action"`
	ComplaintID string    `bson:"complaint_id" json:"complaintId"`
	ActorID     string    `bson:"actor_id" json:"actorId"`
	ActorRole   string    `bson:"actor_role" json:"actorRole"`
	FromStatus  string    `bson:"from_status,omitempty" json:"fromStatus,omitempty"`
	ToStatus    string    `bson:"to_status,omitempty" json:"toStatus,omitempty"`
	Detail      string    `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
