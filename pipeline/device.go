package pipeline

import (
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/core/core1_0"
)

// Device is the slice of a logical device the assembler needs.
type Device interface {
	CreateShaderModule(info core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, error)
	DestroyShaderModule(module core1_0.ShaderModule)

	CreateRenderPass(info core1_0.RenderPassCreateInfo) (core1_0.RenderPass, error)
	DestroyRenderPass(renderPass core1_0.RenderPass)

	CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error)
	DestroyPipelineLayout(layout core1_0.PipelineLayout)

	CreatePipelineCache(info core1_0.PipelineCacheCreateInfo) (core1_0.PipelineCache, error)
	PipelineCacheData(cache core1_0.PipelineCache) ([]byte, error)
	DestroyPipelineCache(cache core1_0.PipelineCache)

	CreateGraphicsPipeline(cache core1_0.PipelineCache, info core1_0.GraphicsPipelineCreateInfo) (core1_0.Pipeline, error)
	DestroyPipeline(pipeline core1_0.Pipeline)
}

// VulkanDevice implements Device over a vkngwrapper logical device.
type VulkanDevice struct {
	Device core1_0.Device
}

func (d VulkanDevice) CreateShaderModule(info core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, error) {
	module, res, err := d.Device.CreateShaderModule(nil, info)
	return module, gpuerr.APICall("vkCreateShaderModule", res, err)
}

func (d VulkanDevice) DestroyShaderModule(module core1_0.ShaderModule) {
	module.Destroy(nil)
}

func (d VulkanDevice) CreateRenderPass(info core1_0.RenderPassCreateInfo) (core1_0.RenderPass, error) {
	renderPass, res, err := d.Device.CreateRenderPass(nil, info)
	return renderPass, gpuerr.APICall("vkCreateRenderPass", res, err)
}

func (d VulkanDevice) DestroyRenderPass(renderPass core1_0.RenderPass) {
	renderPass.Destroy(nil)
}

func (d VulkanDevice) CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error) {
	layout, res, err := d.Device.CreatePipelineLayout(nil, info)
	return layout, gpuerr.APICall("vkCreatePipelineLayout", res, err)
}

func (d VulkanDevice) DestroyPipelineLayout(layout core1_0.PipelineLayout) {
	layout.Destroy(nil)
}

func (d VulkanDevice) CreatePipelineCache(info core1_0.PipelineCacheCreateInfo) (core1_0.PipelineCache, error) {
	cache, res, err := d.Device.CreatePipelineCache(nil, info)
	return cache, gpuerr.APICall("vkCreatePipelineCache", res, err)
}

func (d VulkanDevice) PipelineCacheData(cache core1_0.PipelineCache) ([]byte, error) {
	data, res, err := cache.CacheData()
	return data, gpuerr.APICall("vkGetPipelineCacheData", res, err)
}

func (d VulkanDevice) DestroyPipelineCache(cache core1_0.PipelineCache) {
	cache.Destroy(nil)
}

func (d VulkanDevice) CreateGraphicsPipeline(cache core1_0.PipelineCache, info core1_0.GraphicsPipelineCreateInfo) (core1_0.Pipeline, error) {
	pipelines, res, err := d.Device.CreateGraphicsPipelines(cache, nil, []core1_0.GraphicsPipelineCreateInfo{info})
	if err != nil {
		return nil, gpuerr.APICall("vkCreateGraphicsPipelines", res, err)
	}
	return pipelines[0], nil
}

func (d VulkanDevice) DestroyPipeline(pipeline core1_0.Pipeline) {
	pipeline.Destroy(nil)
}
