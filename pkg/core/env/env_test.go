package env

import (
	"fmt"
	"sync"
	"testing"
)

// TestEnvVar_SetGet 测试基本读写
func TestEnvVar_SetGet(t *testing.T) {
	e := New()
	e.Set("key", "value")

	v, ok := e.Get("key")
	if !ok || v != "value" {
		t.Fatalf("读取失败: %v, %v", v, ok)
	}
	if _, ok := e.Get("missing"); ok {
		t.Fatal("不存在的key应返回false")
	}
	if e.Len() != 1 {
		t.Fatalf("Len应为1，实际: %d", e.Len())
	}

	e.Delete("key")
	if _, ok := e.Get("key"); ok {
		t.Fatal("删除后key应不存在")
	}
}

// TestEnvVar_TypedGetters 测试类型化取值
func TestEnvVar_TypedGetters(t *testing.T) {
	e := New()
	e.Set("str", "hello")
	e.Set("num", 42)
	e.Set("flag", true)

	if s := e.GetString("str"); s != "hello" {
		t.Errorf("GetString失败: %s", s)
	}
	if s := e.GetString("num"); s != "42" {
		t.Errorf("非字符串值应格式化输出: %s", s)
	}
	if s := e.GetString("missing"); s != "" {
		t.Errorf("不存在的key的GetString应为空: %s", s)
	}

	n, err := e.GetInt("num")
	if err != nil || n != 42 {
		t.Errorf("GetInt失败: %v, %d", err, n)
	}
	if _, err := e.GetInt("str"); err == nil {
		t.Error("字符串值的GetInt应失败")
	}

	b, err := e.GetBool("flag")
	if err != nil || !b {
		t.Errorf("GetBool失败: %v, %v", err, b)
	}
}

// TestEnvVar_ConcurrentAccess 测试并发读写的内存安全
func TestEnvVar_ConcurrentAccess(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			e.Set(fmt.Sprintf("key-%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			e.Get(fmt.Sprintf("key-%d", n))
			e.Keys()
		}(i)
	}
	wg.Wait()

	if e.Len() != 50 {
		t.Fatalf("应有50个key，实际: %d", e.Len())
	}
}

// TestEnvVar_Clone 测试浅拷贝
func TestEnvVar_Clone(t *testing.T) {
	e := New()
	e.Set("a", 1)

	cloned := e.Clone()
	cloned.Set("b", 2)

	if e.Len() != 1 {
		t.Fatal("修改副本不应影响原EnvVar")
	}
	if cloned.Len() != 2 {
		t.Fatalf("副本应有2个key，实际: %d", cloned.Len())
	}
}
