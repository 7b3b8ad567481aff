package task

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/LENAX/dag-engine/pkg/core/env"
)

// WrapFunc 将任意函数包装为Capability（对外导出）
// 支持的函数签名约束：
//   - 第一个参数必须是context.Context
//   - 最后一个返回值必须是error
//   - 其余入参从params中按 "arg0"、"arg1"... 匹配并转换类型
//   - 可选的首个返回值会被装入Content作为Task产出
//
// 用于让用户的普通业务函数无需感知引擎接口即可接入调度
func WrapFunc(fn any, params map[string]any) (Capability, error) {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("参数必须是函数类型，当前类型: %v", fnType.Kind())
	}
	if fnType.NumIn() == 0 {
		return nil, fmt.Errorf("函数至少需要一个context.Context参数")
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	firstParamType := fnType.In(0)
	if !firstParamType.Implements(contextType) && firstParamType != contextType {
		return nil, fmt.Errorf("函数第一个参数必须是context.Context，当前类型: %v", firstParamType)
	}

	numOut := fnType.NumOut()
	if numOut == 0 {
		return nil, fmt.Errorf("函数必须至少返回一个error")
	}
	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(numOut - 1).Implements(errorType) {
		return nil, fmt.Errorf("函数最后一个返回值必须是error，当前类型: %v", fnType.Out(numOut-1))
	}
	if numOut > 2 {
		return nil, fmt.Errorf("函数最多返回两个值(result, error)，当前返回值数量: %d", numOut)
	}

	return CapabilityFunc(func(ctx context.Context, _ *env.EnvVar, _ map[string]*Content) (*Content, error) {
		args := make([]reflect.Value, fnType.NumIn())
		args[0] = reflect.ValueOf(ctx)

		for i := 1; i < fnType.NumIn(); i++ {
			raw, found := params[fmt.Sprintf("arg%d", i-1)]
			value, err := convertParam(raw, found, fnType.In(i))
			if err != nil {
				return nil, fmt.Errorf("转换第%d个参数失败: %w", i, err)
			}
			args[i] = value
		}

		results := fnValue.Call(args)

		// 最后一个返回值是error
		if errVal := results[len(results)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		if len(results) == 2 {
			return NewContent(results[0].Interface()), nil
		}
		return nil, nil
	}), nil
}

// convertParam 将参数值转换为目标类型
func convertParam(raw any, found bool, target reflect.Type) (reflect.Value, error) {
	if !found || raw == nil {
		// 参数缺失，使用零值
		return reflect.Zero(target), nil
	}

	rawValue := reflect.ValueOf(raw)
	if rawValue.Type() == target {
		return rawValue, nil
	}

	// 字符串参数按目标类型解析（配置文件加载场景，参数都是字符串）
	if s, ok := raw.(string); ok && target.Kind() != reflect.String {
		switch target.Kind() {
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("无法将 %q 解析为整数: %w", s, err)
			}
			return reflect.ValueOf(n).Convert(target), nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("无法将 %q 解析为浮点数: %w", s, err)
			}
			return reflect.ValueOf(f), nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("无法将 %q 解析为布尔值: %w", s, err)
			}
			return reflect.ValueOf(b), nil
		}
	}

	if rawValue.Type().ConvertibleTo(target) {
		return rawValue.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("参数类型 %T 无法转换为 %v", raw, target)
}
