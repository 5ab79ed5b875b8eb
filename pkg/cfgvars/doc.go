// Package cfgvars 在配置解码过程中替换 ${NAME} 形式的变量占位符。
//
// 占位符必须占据整个值。变量值从可插拔的 [Source] 中查找，
// 再按目标字段的类型严格转换：port: "${PORT}" 可以解码到 uint16 字段，
// 变量值不是合法端口号时返回错误，而不是静默回退。
//
// # 语义说明
//
//  1. 只识别整值占位符，"http://${HOST}" 按普通字面量处理
//  2. 原生的 bool/数字值不参与替换，原样交给结构构建器
//  3. 每次出现独立解析，不做缓存
//  4. 遇到第一个错误即失败，不返回部分结果
//
// # 快速开始
//
// 从 YAML 解码，变量来自环境：
//
//	type Redis struct {
//	    Host     string `json:"host"`
//	    Port     uint16 `json:"port"`
//	    Password string `json:"password"`
//	}
//
//	cfg, err := cfgvars.Decode[Redis](format.YAML(data), cfgvars.EnvSource{})
//
// 使用固定映射或组合多个变量源：
//
//	src := cfgvars.Layered(
//	    cfgvars.MapSource{"REDIS_PASSWORD": "secret"},
//	    cfgvars.EnvSource{},
//	)
//
// 读取 Docker secrets 等“一个文件一个变量”的目录：
//
//	src := cfgvars.FileSource{BaseDir: "/run/secrets"}
//
// # 错误
//
// 替换失败返回 *[Error]，使用 errors.Is 区分类别：
//
//	var e *cfgvars.Error
//	if errors.As(err, &e) && errors.Is(err, cfgvars.ErrUndefinedVariable) {
//	    fmt.Println(e.Path, e.Name) // redis.password REDIS_PASSWORD
//	}
package cfgvars
