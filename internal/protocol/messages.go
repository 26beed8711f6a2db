package protocol

import "encoding/json"

// INIT (server -> client), first message on a connection.
type InitMsg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	ID              string             `json:"id"`
	Peers           []string           `json:"peers"`
	WorldID         string             `json:"world_id,omitempty"`
	TickRateHz      int                `json:"tick_rate_hz,omitempty"`
	Catalogs        CatalogDigests     `json:"catalogs"`
	Highlight       *HighlightStyleMsg `json:"highlight,omitempty"`
}

type CatalogDigests struct {
	BlockPalette DigestRef `json:"block_palette"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// HighlightStyleMsg is the highlight construction. Pieces are min/max boxes
// in the local space placed by TARGET.highlight.
type HighlightStyleMsg struct {
	Type    string       `json:"type"`
	Color   string       `json:"color"`
	Opacity float64      `json:"opacity"`
	Pieces  [][6]float64 `json:"pieces"`
}

// JOIN / LEAVE (server -> peers)
type PeerMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// SIGNAL (client -> server -> client). Inbound ID names the recipient;
// outbound ID names the sender.
type SignalMsg struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Signal json.RawMessage `json:"signal"`
}

// TARGET (server -> clients), once per tick.
type TargetMsg struct {
	Type      string        `json:"type"`
	Tick      uint64        `json:"tick"`
	Visible   bool          `json:"visible"`
	Target    *[3]int       `json:"target"`
	Normal    [3]int        `json:"normal"`
	Potential *PotentialMsg `json:"potential"`
	Highlight HighlightMsg  `json:"highlight"`
	Placement *PlacementMsg `json:"placement,omitempty"`
}

type PotentialMsg struct {
	Voxel     [3]int `json:"voxel"`
	Rotation  int    `json:"rotation"`
	YRotation int    `json:"y_rotation"`
}

type HighlightMsg struct {
	Position [3]float64 `json:"position"`
	Scale    [3]float64 `json:"scale"`
}

// PlacementMsg carries the potential markers: an arrow along the hit normal
// and, on top and bottom faces, one along the snapped yaw.
type PlacementMsg struct {
	Position [3]float64  `json:"position"`
	Normal   [3]float64  `json:"normal"`
	Yaw      *[3]float64 `json:"yaw"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
