package credit

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("MemoryStore", t, func() {
		s := NewMemoryStore()

		Convey("未知用户没有账户", func() {
			_, found, err := s.Balance(ctx, "u1")
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("Ensure 只初始化一次", func() {
			credits, err := s.Ensure(ctx, "u1", 3)
			So(err, ShouldBeNil)
			So(credits, ShouldEqual, 3)

			_, _ = s.Deduct(ctx, "u1")
			credits, err = s.Ensure(ctx, "u1", 3)
			So(err, ShouldBeNil)
			So(credits, ShouldEqual, 2)
		})

		Convey("余额为 0 时扣减失败", func() {
			_, _ = s.Ensure(ctx, "u1", 1)
			remaining, err := s.Deduct(ctx, "u1")
			So(err, ShouldBeNil)
			So(remaining, ShouldEqual, 0)

			_, err = s.Deduct(ctx, "u1")
			So(errors.Is(err, ErrInsufficientCredits), ShouldBeTrue)

			credits, _, _ := s.Balance(ctx, "u1")
			So(credits, ShouldEqual, 0)
		})

		Convey("并发扣减不会扣成负数", func() {
			_, _ = s.Ensure(ctx, "u1", 10)
			var (
				wg sync.WaitGroup
				mu sync.Mutex
				ok int
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := s.Deduct(ctx, "u1"); err == nil {
						mu.Lock()
						ok++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			So(ok, ShouldEqual, 10)
			credits, _, _ := s.Balance(ctx, "u1")
			So(credits, ShouldEqual, 0)
		})

		Convey("Add 为未知用户创建账户", func() {
			credits, err := s.Add(ctx, "u2", 50)
			So(err, ShouldBeNil)
			So(credits, ShouldEqual, 50)
		})

		Convey("MarkEvent 幂等", func() {
			first, err := s.MarkEvent(ctx, "evt_1")
			So(err, ShouldBeNil)
			So(first, ShouldBeTrue)
			first, err = s.MarkEvent(ctx, "evt_1")
			So(err, ShouldBeNil)
			So(first, ShouldBeFalse)
		})
	})
}
