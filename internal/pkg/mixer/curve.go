package mixer

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinAdjustmentDB = -20.0
	MaxAdjustmentDB = 15.0
)

// AdjustmentDB 音乐需要调整的 dB，限制在 [-20, +15]
func AdjustmentDB(targetLUFS, musicLUFS float64) float64 {
	adj := targetLUFS - musicLUFS
	return math.Max(MinAdjustmentDB, math.Min(MaxAdjustmentDB, adj))
}

// DBToLinear dB 转线性增益
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainFor 计算给定能量下的线性增益（保留 3 位小数）
func GainFor(originalLUFS, musicLUFS float64, mode MixMode, energy Energy) float64 {
	target := originalLUFS + mode.OffsetDB() + energy.OffsetDB()
	return round3(DBToLinear(AdjustmentDB(target, musicLUFS)))
}

// Breakpoint 曲线断点：Until 之前使用 Gain
type Breakpoint struct {
	Until float64
	Gain  float64
}

// VolumeCurve 音量曲线
// Breakpoints 为空时整段使用 Flat；否则最后一个断点没有上界
type VolumeCurve struct {
	Flat        float64
	Breakpoints []Breakpoint
}

// BuildCurve 根据片段能量和实测响度构建音量曲线
func BuildCurve(segments []Segment, originalLUFS, musicLUFS float64, mode MixMode) VolumeCurve {
	mode = mode.Normalize()
	if len(segments) < 2 {
		return VolumeCurve{Flat: GainFor(originalLUFS, musicLUFS, mode, "")}
	}

	points := make([]Breakpoint, 0, len(segments))
	for _, seg := range segments {
		points = append(points, Breakpoint{
			Until: round3(seg.EndSeconds),
			Gain:  GainFor(originalLUFS, musicLUFS, mode, seg.Energy),
		})
	}
	return VolumeCurve{Breakpoints: points}
}

// IsFlat 是否为单一增益
func (c VolumeCurve) IsFlat() bool {
	return len(c.Breakpoints) < 2
}

// FlatGain 单一增益；分段曲线取第一段
func (c VolumeCurve) FlatGain() float64 {
	if len(c.Breakpoints) > 0 {
		return c.Breakpoints[0].Gain
	}
	return c.Flat
}

// Expression 曲线的 ffmpeg 表达式
// if(lt(t,b1),g1,if(lt(t,b2),g2,...,gN))
func (c VolumeCurve) Expression() string {
	if c.IsFlat() {
		return formatNumber(c.FlatGain())
	}

	var b strings.Builder
	last := len(c.Breakpoints) - 1
	for _, p := range c.Breakpoints[:last] {
		fmt.Fprintf(&b, "if(lt(t,%s),%s,", formatNumber(p.Until), formatNumber(p.Gain))
	}
	b.WriteString(formatNumber(c.Breakpoints[last].Gain))
	b.WriteString(strings.Repeat(")", last))
	return b.String()
}

// FilterArg volume 滤镜参数
func (c VolumeCurve) FilterArg() string {
	if c.IsFlat() {
		return "volume=" + c.Expression()
	}
	return fmt.Sprintf("volume='%s':eval=frame", c.Expression())
}

// GainAt 计算 t 时刻的增益，与 Expression 语义一致
func (c VolumeCurve) GainAt(t float64) float64 {
	if c.IsFlat() {
		return c.FlatGain()
	}
	last := len(c.Breakpoints) - 1
	for _, p := range c.Breakpoints[:last] {
		if t < p.Until {
			return p.Gain
		}
	}
	return c.Breakpoints[last].Gain
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
