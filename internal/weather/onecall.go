package weather

// OneCall is the subset of the OpenWeather One Call response the kiosk uses.
type OneCall struct {
	Current Current `json:"current"`
	Daily   []Daily `json:"daily"`
	Alerts  []Alert `json:"alerts,omitempty"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Current struct {
	Dt      int64       `json:"dt"`
	Temp    float64     `json:"temp"`
	Weather []Condition `json:"weather"`
}

type DailyTemp struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Daily struct {
	Dt      int64       `json:"dt"`
	Temp    DailyTemp   `json:"temp"`
	Weather []Condition `json:"weather"`
	Pop     float64     `json:"pop"`
}

type Alert struct {
	SenderName  string `json:"sender_name,omitempty"`
	Event       string `json:"event"`
	Start       int64  `json:"start,omitempty"`
	End         int64  `json:"end,omitempty"`
	Description string `json:"description"`
}
