// Package version 빌드 시점에 주입된 메타데이터와 실행 환경 정보를 제공합니다.
//
// 값은 Dockerfile 에서 -ldflags "-X .../version.appVersion=..." 로 주입하며,
// 주입되지 않은 경우(go run 등) 실행 파일의 VCS 메타데이터로 보강합니다.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unknown = "unknown"

// ldflags 주입 대상. 직접 참조하지 말고 Get() 을 사용한다.
var (
	appVersion    = ""
	gitCommitHash = ""
	gitTreeState  = ""
	buildDate     = ""
	buildNumber   = ""
)

// readBuildInfo 테스트에서 교체할 수 있도록 변수로 둡니다.
var readBuildInfo = debug.ReadBuildInfo

var current = sync.OnceValue(func() Info {
	return enrich(Info{
		Version:     strings.TrimSpace(appVersion),
		Commit:      strings.TrimSpace(gitCommitHash),
		BuildDate:   strings.TrimSpace(buildDate),
		BuildNumber: strings.TrimSpace(buildNumber),
		DirtyBuild:  strings.EqualFold(strings.TrimSpace(gitTreeState), "dirty"),
	})
})

// Info 애플리케이션의 빌드 정보입니다. GET /version 응답과 시작 로그에 사용됩니다.
type Info struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildDate   string `json:"build_date"`
	BuildNumber string `json:"build_number"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	DirtyBuild  bool   `json:"dirty_build"`
}

// Get 애플리케이션의 빌드 정보를 반환합니다.
func Get() Info {
	return current()
}

// Version 애플리케이션의 버전 문자열을 반환합니다.
func Version() string {
	return Get().Version
}

// enrich 비어있는 필드를 런타임 정보와 VCS 메타데이터로 채웁니다.
func enrich(bi Info) Info {
	bi.GoVersion = runtime.Version()
	bi.OS = runtime.GOOS
	bi.Arch = runtime.GOARCH

	if info, ok := readBuildInfo(); ok && info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" || bi.Commit == "none" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.BuildDate == "" {
					bi.BuildDate = s.Value
				}
			case "vcs.modified":
				bi.DirtyBuild = bi.DirtyBuild || s.Value == "true"
			}
		}
		if bi.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			bi.Version = info.Main.Version
		}
	}

	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.Commit == "" || bi.Commit == "none" {
		bi.Commit = unknown
	}
	return bi
}

// ToMap 구조적 로깅용 필드 맵을 반환합니다.
func (i Info) ToMap() map[string]any {
	return map[string]any{
		"version":      i.Version,
		"commit":       i.Commit,
		"build_date":   i.BuildDate,
		"build_number": i.BuildNumber,
		"go_version":   i.GoVersion,
		"dirty_build":  i.DirtyBuild,
	}
}

// String "v1.2.0+dirty (commit: f25b8bf, build: 12, go: go1.24.0 linux/amd64)" 형태로 요약합니다.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = unknown
	}
	if i.DirtyBuild {
		v += "+dirty"
	}

	var details []string
	if i.Commit != "" && i.Commit != unknown {
		details = append(details, "commit: "+i.Commit[:min(7, len(i.Commit))])
	}
	if i.BuildNumber != "" {
		details = append(details, "build: "+i.BuildNumber)
	}
	if i.GoVersion != "" {
		details = append(details, fmt.Sprintf("go: %s %s/%s", i.GoVersion, i.OS, i.Arch))
	}

	if len(details) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
