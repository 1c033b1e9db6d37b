package ws

import "github.com/san-kum/physbox/internal/scene"

const (
	TypeCreateBox    = "create_box"
	TypeCreateSphere = "create_sphere"
	TypeReset        = "reset"
	TypeSetGravity   = "set_gravity"
	TypeResize       = "resize"
	TypeOrbit        = "orbit"
	TypePing         = "ping"

	TypeScene  = "scene"
	TypeUpdate = "update"
	TypeSound  = "sound"
	TypeInfo   = "info"
	TypePong   = "pong"
	TypeError  = "error"
)

// ClientMessage is any message a browser sends. Fields not used by a type
// are left zero.
type ClientMessage struct {
	Type       string   `json:"type"`
	Value      *float64 `json:"value,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Ratio      float64  `json:"ratio,omitempty"`
	DX         float64  `json:"dx,omitempty"`
	DY         float64  `json:"dy,omitempty"`
	ClientTime float64  `json:"clientTime,omitempty"`
}

type SceneMessage struct {
	Type    string         `json:"type"`
	Scene   scene.Snapshot `json:"scene"`
	Gravity float64        `json:"gravity"`
}

type UpdateMessage struct {
	Type    string            `json:"type"`
	Frame   int               `json:"frame"`
	Objects []scene.Transform `json:"objects"`
	Camera  [3]float64        `json:"camera"`
}

type SoundMessage struct {
	Type    string  `json:"type"`
	Asset   string  `json:"asset"`
	Volume  float64 `json:"volume"`
	Restart bool    `json:"restart"`
}

type InfoMessage struct {
	Type    string  `json:"type"`
	Objects int     `json:"objects"`
	Gravity float64 `json:"gravity"`
	Sounds  int     `json:"sounds"`
}

type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"clientTime"`
	ServerTime float64 `json:"serverTime"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
