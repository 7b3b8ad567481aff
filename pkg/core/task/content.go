package task

import (
	"fmt"
	"reflect"
)

// Content 类型擦除的结果容器（对外导出）
// Task执行成功后产生一个Content，下游Task通过OutputStore读取前置Task的Content
// 内部值可以是任意类型，由消费方负责解释（类似信息包）
type Content struct {
	value any
}

// NewContent 创建Content实例（对外导出的工厂方法）
func NewContent(value any) *Content {
	return &Content{value: value}
}

// Value 获取原始值（对外导出）
func (c *Content) Value() any {
	if c == nil {
		return nil
	}
	return c.value
}

// String 获取字符串值（对外导出）
// 如果内部值不是string类型，返回错误
func (c *Content) String() (string, error) {
	if c == nil {
		return "", fmt.Errorf("Content为nil")
	}
	if s, ok := c.value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("Content值类型不是string，当前类型: %T", c.value)
}

// Int 获取整数值（对外导出）
// 支持常见整数类型和float64的自动转换
func (c *Content) Int() (int, error) {
	if c == nil {
		return 0, fmt.Errorf("Content为nil")
	}
	switch v := c.value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("Content值类型不是整数，当前类型: %T", c.value)
	}
}

// Float 获取浮点数值（对外导出）
func (c *Content) Float() (float64, error) {
	if c == nil {
		return 0, fmt.Errorf("Content为nil")
	}
	switch v := c.value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("Content值类型不是浮点数，当前类型: %T", c.value)
	}
}

// As 把内部值写入target指向的变量（对外导出）
// target必须是非nil指针，内部值需可赋值给其指向的类型
// 用于结构体等typed accessor覆盖不到的类型
func (c *Content) As(target any) error {
	if c == nil {
		return fmt.Errorf("Content为nil")
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("target必须是非nil指针，当前类型: %T", target)
	}
	elem := rv.Elem()
	if c.value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	vv := reflect.ValueOf(c.value)
	if !vv.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("Content值类型 %T 无法赋值给 %s", c.value, elem.Type())
	}
	elem.Set(vv)
	return nil
}

// Bool 获取布尔值（对外导出）
func (c *Content) Bool() (bool, error) {
	if c == nil {
		return false, fmt.Errorf("Content为nil")
	}
	if b, ok := c.value.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("Content值类型不是布尔值，当前类型: %T", c.value)
}
