package notification

type ListNoticesRequest struct {
	UserID string `json:"user_id"`
}

type ListNoticesResponse struct {
	Notices []SyncNotice `json:"notices"`
}
