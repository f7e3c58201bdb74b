package mixer

import (
	"fmt"
	"strconv"
	"strings"
)

// MixMode 混音模式
type MixMode string

const (
	ModeSocial     MixMode = "social"
	ModeBackground MixMode = "background"
	ModeBalanced   MixMode = "balanced"
	ModeFeature    MixMode = "feature"

	DefaultMode = ModeBalanced
)

// DuckingParams sidechaincompress 参数
type DuckingParams struct {
	Threshold float64
	Ratio     float64
	AttackMS  int
	ReleaseMS int
}

// String 输出 sidechaincompress 的参数串
func (p DuckingParams) String() string {
	return fmt.Sprintf("threshold=%s:ratio=%s:attack=%d:release=%d",
		formatNumber(p.Threshold), formatNumber(p.Ratio), p.AttackMS, p.ReleaseMS)
}

type modeProfile struct {
	offsetDB float64
	ducking  DuckingParams
}

// social 与原声同级，靠 sidechain 让出人声；background 明显压低；feature 音乐为主
var profiles = map[MixMode]modeProfile{
	ModeSocial:     {offsetDB: 0, ducking: DuckingParams{Threshold: 0.05, Ratio: 3.5, AttackMS: 150, ReleaseMS: 600}},
	ModeBackground: {offsetDB: -6, ducking: DuckingParams{Threshold: 0.08, Ratio: 3, AttackMS: 200, ReleaseMS: 800}},
	ModeBalanced:   {offsetDB: -2, ducking: DuckingParams{Threshold: 0.06, Ratio: 2.5, AttackMS: 250, ReleaseMS: 900}},
	ModeFeature:    {offsetDB: 3, ducking: DuckingParams{Threshold: 0.12, Ratio: 2, AttackMS: 300, ReleaseMS: 1000}},
}

// Modes 返回全部已知模式
func Modes() []MixMode {
	return []MixMode{ModeSocial, ModeBackground, ModeBalanced, ModeFeature}
}

// Valid 是否为已知模式
func (m MixMode) Valid() bool {
	_, ok := profiles[m]
	return ok
}

// Normalize 未知模式回落到 balanced
func (m MixMode) Normalize() MixMode {
	if m.Valid() {
		return m
	}
	return DefaultMode
}

// OffsetDB 模式基础偏移（dB，相对原声响度）
func (m MixMode) OffsetDB() float64 {
	return profiles[m.Normalize()].offsetDB
}

// Ducking 模式对应的 sidechain 参数
func (m MixMode) Ducking() DuckingParams {
	return profiles[m.Normalize()].ducking
}

// ParseMixMode 严格解析混音模式
// 空字符串返回默认模式；未知模式返回错误
func ParseMixMode(s string) (MixMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultMode, nil
	}
	m := MixMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mix mode %q", s)
	}
	return m, nil
}

// Energy 片段能量标签
type Energy string

const (
	EnergyCalm     Energy = "calm"
	EnergyBuilding Energy = "building"
	EnergyIntense  Energy = "intense"
	EnergyPeak     Energy = "peak"
	EnergyFading   Energy = "fading"
)

var energyOffsets = map[Energy]float64{
	EnergyCalm:     -1,
	EnergyBuilding: 1,
	EnergyIntense:  3,
	EnergyPeak:     5,
	EnergyFading:   -2,
}

// OffsetDB 能量偏移（dB），未知标签为 0
func (e Energy) OffsetDB() float64 {
	return energyOffsets[Energy(strings.ToLower(strings.TrimSpace(string(e))))]
}

// formatNumber 去掉多余小数位，0.050 -> 0.05，3.0 -> 3
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
