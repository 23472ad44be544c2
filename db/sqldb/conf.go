package sqldb

type Conf struct {
	Type string `json:"type" validate:"required,oneof=mysql pgsql"` // mysql, pgsql
	Host string `json:"host"`
	Port int    `json:"port"`
	User string `json:"user"`
	PW   string `json:"pw"`
	DB   string `json:"db"`
	TZ   string `json:"tz"`  // Connection Timezone
	DSN  string `json:"dsn"` // To Overwrite Default DSN

	CounterTable string `json:"counter_table"` // default "doc_ref_counters"
}
