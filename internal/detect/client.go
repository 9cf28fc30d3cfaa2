// Package detect calls the pattern detection service and converts its
// results into point annotations.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Pattern names a calibration pattern the detection service knows.
type Pattern string

const (
	PatternChessboard Pattern = "chessboard"
	PatternCharuco    Pattern = "charuco"
	PatternCircleGrid Pattern = "circlegrid"
	PatternAprilTag   Pattern = "apriltag"
)

// Known reports whether p is one of the supported pattern names.
func (p Pattern) Known() bool {
	switch p {
	case PatternChessboard, PatternCharuco, PatternCircleGrid, PatternAprilTag:
		return true
	}
	return false
}

// Params is the pattern-specific parameter mapping. It is passed to
// the service verbatim; only the service interprets it.
type Params map[string]any

func ChessboardParams(rows, cols int) Params {
	return Params{"rows": rows, "cols": cols}
}

func CharucoParams(rows, cols int, squareSize, markerSize float64, dictionary string) Params {
	return Params{
		"rows":       rows,
		"cols":       cols,
		"squareSize": squareSize,
		"markerSize": markerSize,
		"dictionary": dictionary,
	}
}

func CircleGridParams(rows, cols int, asymmetric bool) Params {
	return Params{"rows": rows, "cols": cols, "asymmetric": asymmetric}
}

func AprilTagParams(family string) Params {
	return Params{"family": family}
}

// Point2D is one detected feature, optionally carrying the detector's
// own index for that feature.
type Point2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Index *int    `json:"index,omitempty"`
}

// Client calls a detection service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type detectRequest struct {
	ImageID string  `json:"imageId"`
	Pattern Pattern `json:"pattern"`
	Params  Params  `json:"params,omitempty"`
}

type detectReply struct {
	Points []Point2D `json:"points"`
}

// Detect asks the service to find pattern features on a stored image.
func (c *Client) Detect(ctx context.Context, imageID string, pattern Pattern, params Params) ([]Point2D, error) {
	payload, err := json.Marshal(detectRequest{ImageID: imageID, Pattern: pattern, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection service status %d", resp.StatusCode)
	}

	var reply detectReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return reply.Points, nil
}
