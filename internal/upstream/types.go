package upstream

import "time"

// Raw wire shapes for the three upstream feeds. Field names and
// capitalisation mirror the upstream's own JSON exactly so the parser
// needs no translation table.

// rawVesselLocation is one entry in the vessel-locations feed's
// top-level array.
type rawVesselLocation struct {
	VesselID            int    `json:"VesselID"`
	VesselName          string `json:"VesselName"`
	DepartingTerminalID int    `json:"DepartingTerminalID"`
	ArrivingTerminalID  int    `json:"ArrivingTerminalID"`
	AtDock              bool   `json:"AtDock"`
	LeftDock            string `json:"LeftDock"`
	Eta                 string `json:"Eta"`
	ScheduledDeparture  string `json:"ScheduledDeparture"`
	TimeStamp           string `json:"TimeStamp"`
}

// rawTerminalSpace is one entry in the terminal-space feed's top-level
// array.
type rawTerminalSpace struct {
	TerminalID      int                 `json:"TerminalID"`
	TerminalName    string              `json:"TerminalName"`
	DepartingSpaces []rawDepartingSpace `json:"DepartingSpaces"`
}

type rawDepartingSpace struct {
	Departure                string                       `json:"Departure"`
	VesselID                 int                          `json:"VesselID"`
	VesselName               string                       `json:"VesselName"`
	SpaceForArrivalTerminals []rawSpaceForArrivalTerminal `json:"SpaceForArrivalTerminals"`
}

type rawSpaceForArrivalTerminal struct {
	ArrivalTerminalID   int    `json:"ArrivalTerminalID"`
	ArrivalTerminalName string `json:"ArrivalTerminalName"`
	DriveUpSpaceCount   *int   `json:"DriveUpSpaceCount"`
	MaxSpaceCount       int    `json:"MaxSpaceCount"`
}

// rawSchedule is the schedule feed's top-level object.
type rawSchedule struct {
	TerminalCombos []rawTerminalCombo `json:"TerminalCombos"`
}

type rawTerminalCombo struct {
	DepartingTerminalID   int              `json:"DepartingTerminalID"`
	DepartingTerminalName string           `json:"DepartingTerminalName"`
	ArrivingTerminalID    int              `json:"ArrivingTerminalID"`
	Times                 []rawScheduleRow `json:"Times"`
}

type rawScheduleRow struct {
	VesselPositionNum int    `json:"VesselPositionNum"`
	VesselID          int    `json:"VesselID"`
	VesselName        string `json:"VesselName"`
	DepartingTime     string `json:"DepartingTime"`
	IsCancelled       bool   `json:"IsCancelled"`
}

// TerminalSpace is the normalised (dates parsed, otherwise structurally
// unchanged) shape handed to the Capacity Deriver, which does its own
// structural flattening.
type TerminalSpace struct {
	TerminalID      int
	TerminalName    string
	DepartingSpaces []DepartingSpace
}

type DepartingSpace struct {
	Departure                *time.Time
	VesselID                 string
	VesselName               string
	SpaceForArrivalTerminals []SpaceForArrivalTerminal
}

type SpaceForArrivalTerminal struct {
	ArrivalTerminalID int
	DriveUpSpaceCount *int
	MaxSpaceCount     int
}

// ScheduleRow is a single flattened schedule row.
type ScheduleRow struct {
	RouteID              int
	DepartingTerminalID  int
	VesselPositionNumber int
	VesselID             string
	VesselName           string
	DepartingTime        *time.Time
	IsCancelled          bool
}
