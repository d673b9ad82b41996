package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"

	"flowvis/internal/bridge"
	"flowvis/internal/config"
	"flowvis/internal/monitor"
	"flowvis/pkg/api"
	"flowvis/pkg/domain"
)

// main 回放入口：从 NDJSON 调试事件流驱动监视器
func main() {
	configPath := flag.String("config", "", "配置文件路径（YAML），缺省使用内置默认值")
	inputPath := flag.String("input", "-", "调试事件流路径（NDJSON），- 表示标准输入")
	flag.Parse()

	opts := config.NewOptions()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalln("加载配置失败:", err)
		}
		opts = loaded
	}

	var in io.Reader = os.Stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalln("打开事件流失败:", err)
		}
		defer f.Close()
		in = f
	}

	svc := api.NewService(monitor.Config{Options: opts})
	defer svc.Close()
	log.Println("监视会话:", svc.Session())

	replay(in, svc)
}

// replay 逐行解析事件流并送入监视器，坏行跳过不中断
func replay(in io.Reader, svc api.Service) {
	handles := make(map[uint64]*domain.ComponentHandle)
	hooks := make(map[uint64]*monitor.RenderHooks)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		ev, err := bridge.ParseLine(line)
		if err != nil {
			log.Println("跳过坏行:", err)
			continue
		}

		h, ok := handles[ev.UID]
		if !ok {
			h = &domain.ComponentHandle{
				UID: ev.UID,
				Type: &domain.TypeDescriptor{
					Name: ev.Name,
					File: ev.File,
				},
			}
			if ev.HasParent {
				h.Parent = handles[ev.ParentUID]
			}
			handles[ev.UID] = h

			if rh, admitted := svc.Attach(h); admitted {
				hooks[ev.UID] = rh
			}
		}

		rh, admitted := hooks[ev.UID]
		if !admitted {
			continue
		}
		if ev.Kind == domain.KindTriggered {
			rh.OnTriggered(ev.Raw)
		} else {
			rh.OnTracked(ev.Raw)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Println("读取事件流失败:", err)
	}
}
