package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

var ErrWatcherClosed = errors.New("asset watcher already closed")

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the asset directory, dispatches loads to the loader of
 * each resource type and, when watching, fires
 * EVENT_CODE_SHADER_SOURCE_CHANGED whenever a shader file is written.
 */
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	return &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[resources.ResourceType]Loader),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

/**
 * @brief Registers the loaders and indexes assetsDir. An empty or missing
 * directory leaves only the embedded shaders available.
 */
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	textures := &loaders.TextureLoader{}
	binary := &loaders.BinaryLoader{}
	am.registerLoader(resources.ResourceTypeShader, &loaders.ShaderLoader{Fallback: BuiltinShaders()})
	am.registerLoader(resources.ResourceTypeImage, textures)
	am.registerLoader(resources.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{Images: textures})
	am.registerLoader(resources.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(resources.ResourceTypeText, binary)
	am.registerLoader(resources.ResourceTypeBinary, binary)

	am.root = assetsDir
	if assetsDir == "" {
		close(am.stopped)
		return nil
	}
	if _, err := os.Stat(assetsDir); err != nil {
		core.LogWarn("asset directory %s not available, using builtin shaders only", assetsDir)
		am.root = ""
		close(am.stopped)
		return nil
	}

	if !watch {
		close(am.stopped)
		return filepath.Walk(assetsDir, func(walkPath string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() {
				am.handleFileEvent(walkPath)
			}
			return nil
		})
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		close(am.stopped)
		return err
	}
	am.fsnotify = fsWatch
	if err := am.addRecursive(assetsDir); err != nil {
		fsWatch.Close()
		close(am.stopped)
		return err
	}
	go am.start()
	return nil
}

// Shutdown stops the watcher goroutine.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	watching := am.fsnotify != nil
	am.mutex.Unlock()
	if !watching {
		return nil
	}
	close(am.done)
	<-am.stopped
	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrWatcherClosed
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

/**
 * @brief Resolves name to a path under the asset root and loads it.
 * Shaders live in shaders/<name>.hlsl, fonts in fonts/<name>.fnt and
 * materials in materials/<name>.amt; other types take a relative path.
 */
func (am *AssetManager) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	var path string
	switch resourceType {
	case resources.ResourceTypeShader:
		path = filepath.Join(am.root, "shaders", name+".hlsl")
	case resources.ResourceTypeBitmapFont:
		path = filepath.Join(am.root, "fonts", name+".fnt")
	case resources.ResourceTypeMaterial:
		path = filepath.Join(am.root, "materials", name+".amt")
	case resources.ResourceTypeImage, resources.ResourceTypeText, resources.ResourceTypeBinary:
		path = filepath.Join(am.root, name)
	default:
		return nil, fmt.Errorf("unknown resource type %s", resourceType)
	}

	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}

	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, fmt.Errorf("loading %s %s: %w", resourceType, name, err)
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *resources.Resource) error {
	if asset == nil {
		return nil
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// ShaderSource returns the HLSL source of the named shader.
func (am *AssetManager) ShaderSource(name string) ([]byte, error) {
	res, err := am.LoadAsset(name, resources.ResourceTypeShader, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.(*resources.ShaderResourceData).Source, nil
}

// Assets returns a copy of the index.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	return out
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("watching %s: %s", e.Name, err.Error())
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) == resources.ResourceTypeShader {
					core.LogDebug("shader source changed: %s", e.Name)
					core.EventFire(core.EventContext{
						Type:   core.EVENT_CODE_SHADER_SOURCE_CHANGED,
						Sender: am,
						Data:   strings.TrimSuffix(filepath.Base(e.Name), filepath.Ext(e.Name)),
					})
				}
			}
			// Can't stat a deleted path, try to drop it from the watch list anyway.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes a created or modified file and returns its type.
func (am *AssetManager) handleFileEvent(path string) resources.ResourceType {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return assetType
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) resources.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hlsl":
		return resources.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return resources.ResourceTypeImage
	case ".fnt":
		return resources.ResourceTypeBitmapFont
	case ".amt":
		return resources.ResourceTypeMaterial
	case ".txt", ".toml":
		return resources.ResourceTypeText
	case ".bin":
		return resources.ResourceTypeBinary
	default:
		return resources.ResourceTypeNone
	}
}
