package dto

import "site-selection-service/internal/domain"

type CrashResponse struct {
	FatalInjury float64 `json:"fatal_injury"`
	PDO         float64 `json:"pdo"`
}

type SiteResponse struct {
	SiteID            string        `json:"site_id"`
	LengthMi          float64       `json:"length_mi"`
	Lanes             int           `json:"lanes"`
	ADT               float64       `json:"adt"`
	SpeedMPH          float64       `json:"speed_mph"`
	AreaType          string        `json:"area_type"`
	Divided           bool          `json:"divided"`
	LaneWidthFt       float64       `json:"lane_width_ft"`
	ShoulderWidthFt   float64       `json:"shoulder_width_ft"`
	ShoulderType      string        `json:"shoulder_type"`
	NonIntersection   CrashResponse `json:"non_intersection"`
	Intersection      CrashResponse `json:"intersection"`
	PavementCondition float64       `json:"pavement_condition"`
}

type ListSitesResponse struct {
	Sites []SiteResponse `json:"sites"`
}

func NewSiteResponse(s domain.Site) SiteResponse {
	return SiteResponse{
		SiteID:          s.ID,
		LengthMi:        s.Length,
		Lanes:           s.Lanes,
		ADT:             s.ADT,
		SpeedMPH:        s.SpeedMPH,
		AreaType:        string(s.AreaType),
		Divided:         s.Divided,
		LaneWidthFt:     s.LaneWidthFt,
		ShoulderWidthFt: s.ShoulderWidthFt,
		ShoulderType:    string(s.ShoulderType),
		NonIntersection: CrashResponse{
			FatalInjury: s.Crashes.At(domain.NonIntersection, domain.FatalInjury),
			PDO:         s.Crashes.At(domain.NonIntersection, domain.PropertyDamageOnly),
		},
		Intersection: CrashResponse{
			FatalInjury: s.Crashes.At(domain.Intersection, domain.FatalInjury),
			PDO:         s.Crashes.At(domain.Intersection, domain.PropertyDamageOnly),
		},
		PavementCondition: s.PavementCondition,
	}
}
