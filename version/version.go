// Package version 记录 apikit 的构建信息，通过 -ldflags 注入，
// 并生成发往后端的 User-Agent。
//
//	-ldflags "-X github.com/lgc202/apikit/version.gitVersion=v1.2.0 -X github.com/lgc202/apikit/version.gitCommit=$(git rev-parse HEAD)"
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/gosuri/uitable"
)

// Product 是 User-Agent 中的产品名
const Product = "apikit"

var (
	// gitVersion 语义化版本号，未注入时尝试从模块信息中读取
	gitVersion = ""
	// gitCommit 为 $(git rev-parse HEAD) 的输出
	gitCommit = ""
	// gitTreeState 为 clean 或 dirty
	gitTreeState = ""
	// buildDate 为 ISO8601 格式的构建时间
	buildDate = ""
)

// Info 包含了版本信息
type Info struct {
	GitVersion   string `json:"gitVersion"`
	GitCommit    string `json:"gitCommit,omitempty"`
	GitTreeState string `json:"gitTreeState,omitempty"`
	BuildDate    string `json:"buildDate,omitempty"`
	GoVersion    string `json:"goVersion"`
	Platform     string `json:"platform"`
}

// String 返回版本号，工作区有未提交修改时追加 -dirty
func (info Info) String() string {
	if info.GitTreeState == "dirty" {
		return info.GitVersion + "-dirty"
	}
	return info.GitVersion
}

// JSON 以 JSON 格式返回版本信息，indent 为 true 时带缩进
func (info Info) JSON(indent bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(info, "", "  ")
	} else {
		b, err = json.Marshal(info)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal version info: %w", err)
	}
	return string(b), nil
}

// Text 以右对齐表格返回版本信息，空字段不输出
func (info Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	rows := [][2]string{
		{"gitVersion:", info.GitVersion},
		{"gitCommit:", info.GitCommit},
		{"gitTreeState:", info.GitTreeState},
		{"buildDate:", info.BuildDate},
		{"goVersion:", info.GoVersion},
		{"platform:", info.Platform},
	}
	for _, r := range rows {
		if r[1] != "" {
			table.AddRow(r[0], r[1])
		}
	}
	return table.String()
}

// UserAgent 返回形如 "apikit/v1.2.0 (linux/amd64; go1.24.1)" 的 User-Agent
func (info Info) UserAgent() string {
	v := strings.TrimSpace(info.GitVersion)
	if v == "" {
		v = "dev"
	}
	return fmt.Sprintf("%s/%s (%s; %s)", Product, v, info.Platform, info.GoVersion)
}

// UserAgent 返回当前二进制的 User-Agent
func UserAgent() string { return Get().UserAgent() }

// Get 返回当前二进制的构建信息
func Get() Info {
	info := Info{
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.GitVersion == "" || info.GitCommit == "" {
		fillFromBuildInfo(&info)
	}
	if info.GitVersion == "" {
		info.GitVersion = "v0.0.0-dev"
	}
	return info
}

// fillFromBuildInfo 在未通过 -ldflags 注入时，使用 go build 记录的模块与 VCS 信息
func fillFromBuildInfo(info *Info) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if info.GitVersion == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.GitVersion = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			if info.GitTreeState == "" {
				if s.Value == "true" {
					info.GitTreeState = "dirty"
				} else {
					info.GitTreeState = "clean"
				}
			}
		}
	}
}
