package task

import (
	"testing"
)

// TestContent_TypedAccessors 测试各类型取值
func TestContent_TypedAccessors(t *testing.T) {
	s, err := NewContent("hello").String()
	if err != nil || s != "hello" {
		t.Fatalf("String取值失败: %v, %s", err, s)
	}

	n, err := NewContent(42).Int()
	if err != nil || n != 42 {
		t.Fatalf("Int取值失败: %v, %d", err, n)
	}

	// float64自动转int（JSON反序列化场景）
	n, err = NewContent(float64(7)).Int()
	if err != nil || n != 7 {
		t.Fatalf("float64转Int失败: %v, %d", err, n)
	}

	f, err := NewContent(3.14).Float()
	if err != nil || f != 3.14 {
		t.Fatalf("Float取值失败: %v, %f", err, f)
	}

	b, err := NewContent(true).Bool()
	if err != nil || !b {
		t.Fatalf("Bool取值失败: %v, %v", err, b)
	}
}

// TestContent_TypeMismatch 测试类型不匹配返回错误
func TestContent_TypeMismatch(t *testing.T) {
	if _, err := NewContent(42).String(); err == nil {
		t.Error("int取String应失败")
	}
	if _, err := NewContent("x").Int(); err == nil {
		t.Error("string取Int应失败")
	}
	if _, err := NewContent("x").Bool(); err == nil {
		t.Error("string取Bool应失败")
	}
}

// TestContent_Nil 测试nil Content的安全性
func TestContent_Nil(t *testing.T) {
	var c *Content
	if c.Value() != nil {
		t.Error("nil Content的Value应为nil")
	}
	if _, err := c.String(); err == nil {
		t.Error("nil Content取String应失败")
	}
	if _, err := c.Int(); err == nil {
		t.Error("nil Content取Int应失败")
	}
}

// TestContent_As 测试通用取值
func TestContent_As(t *testing.T) {
	type result struct {
		Count int
		Name  string
	}

	var got result
	if err := NewContent(result{Count: 3, Name: "x"}).As(&got); err != nil {
		t.Fatalf("As取值失败: %v", err)
	}
	if got.Count != 3 || got.Name != "x" {
		t.Fatalf("As取值内容错误: %+v", got)
	}

	// 接口目标：任意值都可赋值
	var anything any
	if err := NewContent(42).As(&anything); err != nil {
		t.Fatalf("As到any失败: %v", err)
	}
	if anything != 42 {
		t.Fatalf("As到any内容错误: %v", anything)
	}

	// nil值写入零值
	var s string = "dirty"
	if err := NewContent(nil).As(&s); err != nil {
		t.Fatalf("nil值的As应成功: %v", err)
	}
	if s != "" {
		t.Fatalf("nil值应写入零值，实际: %q", s)
	}

	// 类型不匹配
	var n int
	if err := NewContent("text").As(&n); err == nil {
		t.Error("类型不匹配的As应失败")
	}

	// 非指针或nil目标
	if err := NewContent(1).As(n); err == nil {
		t.Error("非指针target应失败")
	}
	if err := NewContent(1).As((*int)(nil)); err == nil {
		t.Error("nil指针target应失败")
	}

	// nil Content
	var c *Content
	if err := c.As(&n); err == nil {
		t.Error("nil Content的As应失败")
	}
}

// TestContent_ArbitraryValue 测试任意类型值的承载
func TestContent_ArbitraryValue(t *testing.T) {
	payload := map[string]int{"a": 1}
	c := NewContent(payload)
	got, ok := c.Value().(map[string]int)
	if !ok || got["a"] != 1 {
		t.Fatalf("Content应原样承载任意类型，实际: %v", c.Value())
	}
}
