package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	eventdomain "github.com/rpypty/galleria/internal/domain/event"
)

// parseGalleryPage reads the page/size query params. Both absent means
// the unpaginated compatibility mode (nil page). Either one present
// selects pagination, with defaults page=0 and size=20.
func parseGalleryPage(r *http.Request) (*eventdomain.Page, error) {
	pageValue := strings.TrimSpace(r.URL.Query().Get("page"))
	sizeValue := strings.TrimSpace(r.URL.Query().Get("size"))
	if pageValue == "" && sizeValue == "" {
		return nil, nil
	}

	page, err := parseIntParam(pageValue, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid page")
	}
	size, err := parseIntParam(sizeValue, 20)
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("invalid size")
	}

	return &eventdomain.Page{Number: page, Size: size}, nil
}

func parseIntParam(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}
