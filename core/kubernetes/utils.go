package kubernetes

import (
	"reflect"

	"github.com/solarview/core/core/logger"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

type KubeHelper struct {
	Clientset  *kubernetes.Clientset
	Kubeconfig string
	Log        logger.ILogger
}

func (k *KubeHelper) Bootstrap(location string, apiLog logger.ILogger) {
	// We'll need the logger later...
	k.Log = apiLog
	var err error

	// Don't run multiple times (?)
	if k.Clientset != nil && !reflect.ValueOf(k.Clientset.CoreV1()).IsNil() {
		k.Log.Infof("KubeHelper Bootstrap not run...")
		return
	}

	// Decide if internal or external kubernetes
	var conf *rest.Config

	if location == "external" {
		k.Log.Debugf("Bootstrapping kubernetes as external")

		// use the current context in kubeconfig
		conf, err = clientcmd.BuildConfigFromFlags("", k.Kubeconfig)
		if err != nil {
			k.Log.Errorf("Kubernetes BuildConfigFromFlags error: %v", err.Error())
		}
	} else {
		k.Log.Debugf("Bootstrapping kubernetes as internal")

		conf, err = rest.InClusterConfig()
		if err != nil {
			k.Log.Errorf("Kubernetes InClusterConfig failed: %v", err.Error())
		}
	}

	clientset := &kubernetes.Clientset{}
	clientset, err = kubernetes.NewForConfig(conf)
	if err != nil {
		k.Log.Errorf("Kubernetes NewForConfig failed: %v", err.Error())
	}

	k.Clientset = clientset
}
