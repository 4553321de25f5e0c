package system

// VersionResponse GET /version 응답입니다. 값은 빌드 시 ldflags 로 주입되며, 없으면 VCS 메타데이터를 사용합니다.
type VersionResponse struct {
	Version     string `json:"version" example:"1.2.0"`
	Commit      string `json:"commit" example:"abc1234"`
	BuildDate   string `json:"build_date" example:"2025-12-01T14:00:00Z"`
	BuildNumber string `json:"build_number" example:"100"`
	GoVersion   string `json:"go_version" example:"go1.24.0"`

	// Platform 실행 중인 바이너리의 GOOS/GOARCH
	Platform string `json:"platform" example:"linux/amd64"`

	// Dirty 커밋되지 않은 변경이 있는 작업 트리에서 빌드되었는지 여부
	Dirty bool `json:"dirty"`
}
