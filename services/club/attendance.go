package club

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kiwisport/clubboard/core/attendance"
)

var _ attendance.API = (*Client)(nil)

func (c *Client) ListAttendance(ctx context.Context, date string) ([]attendance.Record, error) {
	q := url.Values{}
	q.Set("date", date)

	var records []attendance.Record
	if err := c.get(ctx, "/api/attendance/", q, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateAttendance(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	payload := map[string]interface{}{
		"member": rec.Member,
		"date":   rec.Date,
		"status": rec.Status,
	}
	var saved attendance.Record
	if err := c.sendJSON(ctx, http.MethodPost, "/api/attendance/", payload, &saved); err != nil {
		return attendance.Record{}, err
	}
	return saved, nil
}

func (c *Client) UpdateAttendance(ctx context.Context, id int, rec attendance.Record) (attendance.Record, error) {
	payload := map[string]interface{}{
		"member": rec.Member,
		"date":   rec.Date,
		"status": rec.Status,
	}
	var saved attendance.Record
	path := fmt.Sprintf("/api/attendance/%d/", id)
	if err := c.sendJSON(ctx, http.MethodPut, path, payload, &saved); err != nil {
		return attendance.Record{}, err
	}
	return saved, nil
}
