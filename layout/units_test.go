package layout

import (
	"math"
	"testing"
)

// TestVWToPx 验证 vw 换算：value * 1vw * dpr * scale。
func TestVWToPx(t *testing.T) {
	cfg := NewConfig(Metrics{WindowWidth: 375, DevicePixelRatio: 2})
	if got := cfg.VWToPx(10, 0); math.Abs(got-75) > 1e-9 {
		t.Fatalf("10vw@dpr2 期望 75，实际 %g", got)
	}
	// 显式 dpr 覆盖宿主像素比
	if got := cfg.VWToPx(10, 3); math.Abs(got-112.5) > 1e-9 {
		t.Fatalf("10vw@dpr3 期望 112.5，实际 %g", got)
	}
	scaled := cfg.WithScale(0.5)
	if got := scaled.VWToPx(10, 0); math.Abs(got-37.5) > 1e-9 {
		t.Fatalf("scale 0.5 期望 37.5，实际 %g", got)
	}
}

// TestRawPixels 验证像素模式只乘以像素比。
func TestRawPixels(t *testing.T) {
	cfg := NewConfig(Metrics{WindowWidth: 375, DevicePixelRatio: 3})
	toPx := cfg.Converter(UnitPX, 1)
	if got := toPx(15); got != 15 {
		t.Fatalf("15px@dpr1 期望 15，实际 %g", got)
	}
	toPx = cfg.Converter(UnitPX, 0)
	if got := toPx(15); got != 45 {
		t.Fatalf("15px@宿主 dpr3 期望 45，实际 %g", got)
	}
}

// TestConverterLinear 换算是线性的：toPx(a+b) == toPx(a) + toPx(b)。
func TestConverterLinear(t *testing.T) {
	cfg := NewConfig(Metrics{WindowWidth: 414, DevicePixelRatio: 2.75}).WithScale(1.3)
	samples := []float64{0, 0.001, 1, 3, 12.5, 50, 100, 333.3}
	for _, unit := range []Unit{UnitVW, UnitPX} {
		toPx := cfg.Converter(unit, 0)
		for _, a := range samples {
			for _, b := range samples {
				sum := toPx(a + b)
				parts := toPx(a) + toPx(b)
				if diff := math.Abs(sum - parts); diff > 1e-9*math.Max(1, math.Abs(sum)) {
					t.Fatalf("%s 非线性: a=%g b=%g sum=%g parts=%g", UnitToString(unit), a, b, sum, parts)
				}
			}
		}
	}
}

func TestNewConfigDefaultsDPR(t *testing.T) {
	cfg := NewConfig(Metrics{WindowWidth: 320})
	if cfg.DPR != 1 || cfg.Scale != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.OneVW != 3.2 {
		t.Fatalf("oneVW 期望 3.2，实际 %g", cfg.OneVW)
	}
}

func TestNewConfigScaleFromMetrics(t *testing.T) {
	cfg := NewConfig(Metrics{WindowWidth: 400, DevicePixelRatio: 1, Scale: 0.5})
	if got := cfg.VWToPx(10, 0); got != 20 {
		t.Fatalf("缩放后 10vw 期望 20px，实际 %g", got)
	}
}
