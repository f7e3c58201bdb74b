package mixer

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseSegments(t *testing.T) {
	Convey("ParseSegments", t, func() {
		Convey("正常 JSON", func() {
			segs := ParseSegments(`[
				{"start_seconds": 0, "end_seconds": 4.5, "energy": "calm", "mood": "dreamy"},
				{"start_seconds": 4.5, "end_seconds": 9, "energy": "peak"}
			]`)
			So(segs, ShouldHaveLength, 2)
			So(segs[0].EndSeconds, ShouldEqual, 4.5)
			So(segs[1].Energy, ShouldEqual, EnergyPeak)
		})

		Convey("格式错误退化为空列表", func() {
			So(ParseSegments(`[{"start_seconds": 0,`), ShouldBeEmpty)
			So(ParseSegments(`{"start_seconds": 0}`), ShouldBeEmpty)
			So(ParseSegments(`not json`), ShouldBeEmpty)
		})

		Convey("空输入", func() {
			So(ParseSegments(""), ShouldBeEmpty)
			So(ParseSegments("[]"), ShouldBeEmpty)
		})
	})
}

func TestApplyPolicy(t *testing.T) {
	segs := []Segment{
		{StartSeconds: 0, EndSeconds: 5, Energy: EnergyCalm},
		{StartSeconds: 5, EndSeconds: 12, Energy: EnergyPeak},
		{StartSeconds: 12, EndSeconds: 20, Energy: EnergyFading},
	}

	Convey("ApplyPolicy", t, func() {
		Convey("keep 保留越界片段", func() {
			out, err := ApplyPolicy(segs, 10, PolicyKeep)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, segs)
		})

		Convey("clamp 丢弃起点越界的片段并截断终点", func() {
			out, err := ApplyPolicy(segs, 10, PolicyClamp)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 2)
			So(out[1].EndSeconds, ShouldEqual, 10)
			So(segs[1].EndSeconds, ShouldEqual, 12)
		})

		Convey("reject 返回校验错误", func() {
			_, err := ApplyPolicy(segs, 10, PolicyReject)
			So(errors.Is(err, ErrInvalidSegments), ShouldBeTrue)
		})

		Convey("时长未知时不处理越界", func() {
			out, err := ApplyPolicy(segs, 0, PolicyReject)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 3)
		})

		Convey("终点相同的相邻片段合法", func() {
			same := []Segment{
				{StartSeconds: 0, EndSeconds: 5, Energy: EnergyCalm},
				{StartSeconds: 0, EndSeconds: 5, Energy: EnergyPeak},
				{StartSeconds: 5, EndSeconds: 10, Energy: EnergyIntense},
			}
			out, err := ApplyPolicy(same, 10, PolicyReject)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, same)

			out, err = ApplyPolicy(same, 10, PolicyKeep)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 3)
		})

		Convey("非法片段", func() {
			bad := []Segment{
				{StartSeconds: 0, EndSeconds: 5},
				{StartSeconds: 6, EndSeconds: 6},
				{StartSeconds: -1, EndSeconds: 7},
				{StartSeconds: 3, EndSeconds: 4},
				{StartSeconds: 5, EndSeconds: 9},
			}

			Convey("keep 丢弃", func() {
				out, err := ApplyPolicy(bad, 30, PolicyKeep)
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []Segment{{StartSeconds: 0, EndSeconds: 5}, {StartSeconds: 5, EndSeconds: 9}})
			})

			Convey("reject 报错", func() {
				_, err := ApplyPolicy(bad, 30, PolicyReject)
				So(errors.Is(err, ErrInvalidSegments), ShouldBeTrue)
			})
		})
	})
}
