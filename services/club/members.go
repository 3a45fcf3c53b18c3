package club

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kiwisport/clubboard/core/member"
)

var _ member.Directory = (*Client)(nil)

func (c *Client) ListMembers(ctx context.Context) ([]member.Member, error) {
	var members []member.Member
	if err := c.get(ctx, "/api/members/", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) CreateMember(ctx context.Context, data member.NewMember) (member.Member, error) {
	// unset optional fields are omitted so the upstream applies its defaults
	fields := map[string]string{"name": data.Name}
	addIfSet(fields, "phone_number", data.PhoneNumber)
	addIfSet(fields, "date_of_birth", data.DateOfBirth)
	addIfSet(fields, "registration_date", data.RegistrationDate)
	addIfSet(fields, "passport_number", data.PassportNumber)
	addIfSet(fields, "sport_type", data.SportType)

	var m member.Member
	if err := c.sendForm(ctx, http.MethodPost, "/api/members/", fields, data.Image, &m); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

// UpdateMember is a full replacement: every field is sent, empty values
// included, so a cleared field clears the stored value instead of being
// silently preserved. Only the image is conditional, since re-sending a
// stored image URL as a file upload is meaningless.
func (c *Client) UpdateMember(ctx context.Context, id int, data member.UpdateMember) (member.Member, error) {
	fields := map[string]string{
		"name":              data.Name,
		"phone_number":      data.PhoneNumber,
		"date_of_birth":     data.DateOfBirth,
		"registration_date": data.RegistrationDate,
		"passport_number":   data.PassportNumber,
		"sport_type":        data.SportType,
	}

	var m member.Member
	path := fmt.Sprintf("/api/members/%d/", id)
	if err := c.sendForm(ctx, http.MethodPut, path, fields, data.Image, &m); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (c *Client) DeleteMember(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/members/%d/", id))
}

func addIfSet(fields map[string]string, key, val string) {
	if val != "" {
		fields[key] = val
	}
}
