package kvdb

type Conf struct {
	Type   string `json:"type" validate:"required,oneof=redis"`
	Host   string `json:"host" validate:"required"`
	Port   int    `json:"port" validate:"required,min=1,max=65535"`
	PW     string `json:"pw"`
	DB     int    `json:"db"`     // optional db number e.g. redis
	Prefix string `json:"prefix"` // key prefix for counters, e.g. "docoverlay:counter:"
}
